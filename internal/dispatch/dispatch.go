// Package dispatch writes the payment updates planned for a command.
package dispatch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/metrics"
	"github.com/mmynk/odemetakip/internal/models"
)

// DefaultLimit is the number of writes in flight when no limit is given.
const DefaultLimit = 8

// Updater persists the payment state of one athlete.
type Updater interface {
	UpdateAthletePayments(ctx context.Context, athleteID string, payments models.PaymentState) error
}

// Failure is one update that could not be written.
type Failure struct {
	AthleteID string
	Name      string
	Err       error
}

// Result reports the outcome of Run. Applied and Failed keep the order of
// the input updates.
type Result struct {
	Applied []command.Update
	Failed  []Failure
}

// OK reports whether every update was written.
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Run writes every update, at most limit at a time. A failed write does not
// stop the others and earlier writes are not rolled back.
func Run(ctx context.Context, u Updater, updates []command.Update, limit int) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	errs := make([]error, len(updates))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, up := range updates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = u.UpdateAthletePayments(ctx, up.AthleteID, up.Payments)
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, up := range updates {
		if err := errs[i]; err != nil {
			metrics.PaymentWrites.WithLabelValues("error").Inc()
			slog.Warn("payment write failed", "athlete_id", up.AthleteID, "error", err)
			res.Failed = append(res.Failed, Failure{AthleteID: up.AthleteID, Name: up.Name, Err: err})
			continue
		}
		metrics.PaymentWrites.WithLabelValues("ok").Inc()
		res.Applied = append(res.Applied, up)
	}
	return res
}
