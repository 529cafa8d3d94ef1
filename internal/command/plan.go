package command

import (
	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
)

// Update is the new payment state for one athlete.
type Update struct {
	AthleteID string
	Name      string
	Payments  models.PaymentState
}

// Plan resolves intent against roster (already scoped to the active list and
// search box). The roster is not modified.
func Plan(intent Intent, roster []models.Athlete) ([]Update, error) {
	if err := intent.Err(); err != nil {
		return nil, err
	}
	if len(intent.Months) == 0 {
		return nil, ErrNoMonth
	}

	matched := Match(intent.NameFragment, roster)
	if len(matched) == 0 {
		return nil, ErrNoMatch
	}

	updates := make([]Update, 0, len(matched))
	for _, a := range matched {
		payments := calendar.Complete(a.Payments)
		for _, key := range intent.Months {
			payments[key] = intent.IsPaid
		}
		updates = append(updates, Update{
			AthleteID: a.ID,
			Name:      a.Name,
			Payments:  payments,
		})
	}
	return updates, nil
}
