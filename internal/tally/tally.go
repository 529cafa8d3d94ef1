// Package tally aggregates the payment table: how many athletes paid each
// month and how many months each athlete still owes.
package tally

import (
	"sort"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
)

// AthleteBalance is the payment record of one athlete.
type AthleteBalance struct {
	AthleteID string
	Name      string
	Paid      int // months paid
	Unpaid    int // months still owed
}

// MonthTotal is the column total of one month.
type MonthTotal struct {
	Key    string
	Label  string
	Paid   int
	Unpaid int
}

// Summary is the whole table in numbers.
type Summary struct {
	Athletes []AthleteBalance
	Months   []MonthTotal

	// Settled counts athletes with nothing owed.
	Settled int
}

// Calculate tallies athletes over the full calendar. Months missing from an
// athlete's payments count as unpaid.
//
// Athletes come back with the largest debt first, ties by roster order.
func Calculate(athletes []models.Athlete) Summary {
	months := calendar.Months()
	totals := make([]MonthTotal, len(months))
	for i, m := range months {
		totals[i] = MonthTotal{Key: m.Key, Label: m.Label}
	}

	balances := make([]AthleteBalance, 0, len(athletes))
	settled := 0
	for _, a := range athletes {
		b := AthleteBalance{AthleteID: a.ID, Name: a.Name}
		for i, m := range months {
			if a.Payments[m.Key] {
				b.Paid++
				totals[i].Paid++
			} else {
				b.Unpaid++
				totals[i].Unpaid++
			}
		}
		if b.Unpaid == 0 {
			settled++
		}
		balances = append(balances, b)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Unpaid > balances[j].Unpaid
	})

	return Summary{Athletes: balances, Months: totals, Settled: settled}
}

// Debtors returns the athletes owing at least one month.
func (s Summary) Debtors() []AthleteBalance {
	var out []AthleteBalance
	for _, b := range s.Athletes {
		if b.Unpaid > 0 {
			out = append(out, b)
		}
	}
	return out
}
