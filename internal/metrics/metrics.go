// Package metrics exposes Prometheus instruments for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "odemetakip"

var (
	// RPCDuration observes every unary RPC by procedure and Connect code.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Duration of unary RPCs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})

	// Commands counts interpreted free-text commands by outcome
	// (applied, preview, no_action, no_month, no_match).
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Free-text payment commands by outcome.",
	}, []string{"outcome"})

	// PaymentWrites counts per-athlete payment writes by result (ok, error).
	PaymentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_writes_total",
		Help:      "Athlete payment state writes.",
	}, []string{"result"})

	// Subscribers is the number of open roster streams.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_subscribers",
		Help:      "Open realtime roster subscriptions.",
	})

	// EventsDropped counts roster events not delivered to a slow subscriber.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_events_dropped_total",
		Help:      "Roster events dropped because a subscriber buffer was full.",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
