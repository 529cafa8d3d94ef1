package command

import (
	"strings"

	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/textnorm"
)

// Match returns, in roster order, every athlete whose canonical name
// contains the canonical fragment. An empty fragment matches everyone.
func Match(fragment string, roster []models.Athlete) []models.Athlete {
	fragment = textnorm.Canonical(fragment)

	var out []models.Athlete
	for _, a := range roster {
		if strings.Contains(textnorm.Canonical(a.Name), fragment) {
			out = append(out, a)
		}
	}
	return out
}

// Filter applies the search box to roster. It uses the same predicate as
// Match.
func Filter(roster []models.Athlete, search string) []models.Athlete {
	if strings.TrimSpace(search) == "" {
		return roster
	}
	return Match(search, roster)
}

// FindByName returns the athlete whose name equals name ignoring case,
// diacritics and spacing.
func FindByName(roster []models.Athlete, name string) (models.Athlete, bool) {
	for _, a := range roster {
		if textnorm.Equal(a.Name, name) {
			return a, true
		}
	}
	return models.Athlete{}, false
}
