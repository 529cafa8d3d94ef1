package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/tally"
)

const unpaidCell = "·"

// writeTable prints the payment table: one row per athlete, one column per
// month, then the column totals.
func writeTable(w io.Writer, athletes []models.Athlete) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	fmt.Fprintf(tw, "Sporcu\t%s\t\n", strings.Join(calendar.Labels(), "\t"))
	keys := calendar.Keys()
	for _, a := range athletes {
		cells := make([]string, len(keys))
		for i, key := range keys {
			cells[i] = unpaidCell
			if a.Payments[key] {
				cells[i] = "✓"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", a.Name, strings.Join(cells, "\t"))
	}
	if len(athletes) == 0 {
		fmt.Fprintln(tw, "(sporcu yok)")
		return tw.Flush()
	}

	summary := tally.Calculate(athletes)
	paid := make([]string, len(summary.Months))
	for i, m := range summary.Months {
		paid[i] = strconv.Itoa(m.Paid)
	}
	fmt.Fprintf(tw, "Ödenen\t%s\t\n", strings.Join(paid, "\t"))
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d/%d sporcunun borcu yok\n", summary.Settled, len(athletes))
	return err
}

// monthLabels turns month keys into their table labels.
func monthLabels(keys []string) string {
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		if m, ok := calendar.Lookup(key); ok {
			labels = append(labels, m.Label)
		}
	}
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}
