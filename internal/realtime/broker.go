// Package realtime fans roster change events out to subscribers of a list.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/odemetakip/internal/metrics"
	"github.com/mmynk/odemetakip/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Broker delivers every published event to the subscribers of its list.
// A subscriber whose buffer is full misses the event rather than blocking
// the publisher.
type Broker struct {
	buffer int

	mu   sync.RWMutex
	subs map[string]map[chan models.RosterEvent]struct{}
}

// NewBroker creates a broker with the given per-subscriber buffer size.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[string]map[chan models.RosterEvent]struct{}),
	}
}

// Subscribe returns a channel of events for listID. The channel is closed
// once ctx is done.
func (b *Broker) Subscribe(ctx context.Context, listID string) <-chan models.RosterEvent {
	ch := make(chan models.RosterEvent, b.buffer)

	b.mu.Lock()
	if b.subs[listID] == nil {
		b.subs[listID] = make(map[chan models.RosterEvent]struct{})
	}
	b.subs[listID][ch] = struct{}{}
	b.mu.Unlock()
	metrics.Subscribers.Inc()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[listID], ch)
		if len(b.subs[listID]) == 0 {
			delete(b.subs, listID)
		}
		close(ch)
		b.mu.Unlock()
		metrics.Subscribers.Dec()
	}()

	return ch
}

// Publish sends event to every subscriber of event.ListID without blocking.
func (b *Broker) Publish(event models.RosterEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[event.ListID] {
		select {
		case ch <- event:
		default:
			metrics.EventsDropped.Inc()
			slog.Warn("Roster subscriber is behind, event dropped",
				"list_id", event.ListID,
				"athlete_id", event.Athlete.ID,
				"type", event.Type,
			)
		}
	}
}

// Subscribers returns the number of open subscriptions for listID.
func (b *Broker) Subscribers(listID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[listID])
}
