// Package calendar holds the fixed 13-month payment window and the aliases
// used to recognize each month in free text.
package calendar

import (
	"sort"
	"strings"

	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/textnorm"
)

// Month is one column of the payment table.
type Month struct {
	// Key is the canonical identifier, "YYYY-MM".
	Key string

	// Label is the short header shown in tables and CSV exports.
	Label string

	// Aliases are the spellings recognized in commands. They are stored
	// as typed and compared after normalization.
	Aliases []string
}

// months is ordered chronologically. September appears at both ends of the
// window with the same aliases, so "eylül" targets both columns.
var months = []Month{
	{Key: "2025-09", Label: "Eyl 25", Aliases: []string{"eyl", "eylül", "eylul"}},
	{Key: "2025-10", Label: "Eki 25", Aliases: []string{"eki", "ekim"}},
	{Key: "2025-11", Label: "Kas 25", Aliases: []string{"kas", "kasım", "kasim"}},
	{Key: "2025-12", Label: "Ara 25", Aliases: []string{"ara", "aralık", "aralik"}},
	{Key: "2026-01", Label: "Oca 26", Aliases: []string{"oca", "ocak"}},
	{Key: "2026-02", Label: "Şub 26", Aliases: []string{"sub", "şub", "şubat", "subat"}},
	{Key: "2026-03", Label: "Mar 26", Aliases: []string{"mar", "mart"}},
	{Key: "2026-04", Label: "Nis 26", Aliases: []string{"nis", "nisan"}},
	{Key: "2026-05", Label: "May 26", Aliases: []string{"may", "mayıs", "mayis"}},
	{Key: "2026-06", Label: "Haz 26", Aliases: []string{"haz", "haziran"}},
	{Key: "2026-07", Label: "Tem 26", Aliases: []string{"tem", "temmuz"}},
	{Key: "2026-08", Label: "Ağu 26", Aliases: []string{"agu", "ağu", "ağustos", "agustos"}},
	{Key: "2026-09", Label: "Eyl 26", Aliases: []string{"eyl", "eylül", "eylul"}},
}

// normalizedAliases mirrors months with every alias normalized once.
var normalizedAliases = func() [][]string {
	out := make([][]string, len(months))
	for i, m := range months {
		seen := make(map[string]bool, len(m.Aliases))
		for _, a := range m.Aliases {
			n := textnorm.Normalize(a)
			if !seen[n] {
				seen[n] = true
				out[i] = append(out[i], n)
			}
		}
	}
	return out
}()

// Months returns a copy of the calendar in chronological order.
func Months() []Month {
	out := make([]Month, len(months))
	for i, m := range months {
		m.Aliases = append([]string(nil), m.Aliases...)
		out[i] = m
	}
	return out
}

// Keys returns the month keys in chronological order.
func Keys() []string {
	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = m.Key
	}
	return keys
}

// Labels returns the month labels in chronological order.
func Labels() []string {
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = m.Label
	}
	return labels
}

// Lookup returns the month with the given key.
func Lookup(key string) (Month, bool) {
	for _, m := range months {
		if m.Key == key {
			m.Aliases = append([]string(nil), m.Aliases...)
			return m, true
		}
	}
	return Month{}, false
}

// IsKey reports whether key names a calendar month.
func IsKey(key string) bool {
	_, ok := Lookup(key)
	return ok
}

// BlankPayments returns a PaymentState with every month unpaid.
func BlankPayments() models.PaymentState {
	p := make(models.PaymentState, len(months))
	for _, m := range months {
		p[m.Key] = false
	}
	return p
}

// Complete returns a PaymentState holding exactly the calendar keys: values
// present in p are kept, missing months are false, unknown keys are dropped.
func Complete(p models.PaymentState) models.PaymentState {
	out := BlankPayments()
	for k := range out {
		out[k] = p[k]
	}
	return out
}

// MatchMonths returns, in chronological order, the keys of every month with
// an alias occurring anywhere in normalized. normalized must already have
// gone through textnorm.Normalize. Matching is by substring, so "martı"
// selects March.
func MatchMonths(normalized string) []string {
	var keys []string
	for i, m := range months {
		for _, alias := range normalizedAliases[i] {
			if strings.Contains(normalized, alias) {
				keys = append(keys, m.Key)
				break
			}
		}
	}
	return keys
}

// NormalizedAliases returns every normalized alias of the months whose keys
// are given, longest first.
func NormalizedAliases(keys []string) []string {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	seen := make(map[string]bool)
	var out []string
	for i, m := range months {
		if !want[m.Key] {
			continue
		}
		for _, a := range normalizedAliases[i] {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
