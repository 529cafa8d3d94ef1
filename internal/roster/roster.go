// Package roster keeps an in-memory view of one list's athletes, merged from
// an initial load and a stream of change events.
//
// Merging is last-writer-wins per field (the name, each month of the
// payments, existence) keyed by RosterEvent.At. Equal timestamps are broken
// by value, so the final view does not depend on the order in which events
// arrive.
package roster

import (
	"context"
	"sort"
	"sync"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/models"
)

type entry struct {
	athlete models.Athlete

	seenAt    int64 // latest insert or update
	deletedAt int64
	nameAt    int64
	paidAt    map[string]int64
}

func (e *entry) alive() bool {
	return e.seenAt > e.deletedAt
}

// Roster is safe for concurrent use.
type Roster struct {
	listID string

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty roster for listID.
func New(listID string) *Roster {
	return &Roster{
		listID:  listID,
		entries: make(map[string]*entry),
	}
}

// ListID returns the list this roster follows.
func (r *Roster) ListID() string {
	return r.listID
}

// Load merges athletes as if each had been inserted at time at.
func (r *Roster) Load(athletes []models.Athlete, at int64) {
	for _, a := range athletes {
		r.Apply(models.RosterEvent{Type: models.EventInsert, ListID: r.listID, Athlete: a, At: at})
	}
}

// Apply merges one event. Events for other lists are ignored. It reports
// whether the visible roster may have changed.
func (r *Roster) Apply(ev models.RosterEvent) bool {
	if ev.ListID != r.listID || ev.Athlete.ID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[ev.Athlete.ID]
	if !ok {
		e = &entry{
			athlete: models.Athlete{ID: ev.Athlete.ID, ListID: r.listID, Payments: calendar.BlankPayments()},
			paidAt:  make(map[string]int64),
		}
		r.entries[ev.Athlete.ID] = e
	}

	if ev.Type == models.EventDelete {
		if ev.At > e.deletedAt {
			e.deletedAt = ev.At
		}
		return true
	}

	if ev.At > e.seenAt {
		e.seenAt = ev.At
	}
	if c := ev.Athlete.CreatedAt; c != 0 && (e.athlete.CreatedAt == 0 || c < e.athlete.CreatedAt) {
		e.athlete.CreatedAt = c
	}
	if ev.Athlete.UpdatedAt > e.athlete.UpdatedAt {
		e.athlete.UpdatedAt = ev.Athlete.UpdatedAt
	}

	if ev.Athlete.Name != "" && wins(ev.At, e.nameAt, ev.Athlete.Name > e.athlete.Name) {
		e.athlete.Name = ev.Athlete.Name
		e.nameAt = ev.At
	}

	for key, paid := range ev.Athlete.Payments {
		if !calendar.IsKey(key) {
			continue
		}
		if wins(ev.At, e.paidAt[key], paid && !e.athlete.Payments[key]) {
			e.athlete.Payments[key] = paid
			e.paidAt[key] = ev.At
		}
	}
	return true
}

// wins reports whether a write at time at replaces one at time current.
// On a tie, tieBreak decides.
func wins(at, current int64, tieBreak bool) bool {
	if at != current {
		return at > current
	}
	return tieBreak
}

// Snapshot returns the live athletes ordered by creation time, then ID.
func (r *Roster) Snapshot() []models.Athlete {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Athlete, 0, len(r.entries))
	for _, e := range r.entries {
		if e.alive() {
			out = append(out, e.athlete.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Visible returns the snapshot narrowed by the search box text.
func (r *Roster) Visible(search string) []models.Athlete {
	return command.Filter(r.Snapshot(), search)
}

// Len returns the number of live athletes.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.alive() {
			n++
		}
	}
	return n
}

// Run applies events until ctx is done or events is closed. onChange, when
// not nil, is called after each event that touched this list.
func (r *Roster) Run(ctx context.Context, events <-chan models.RosterEvent, onChange func(models.RosterEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if r.Apply(ev) && onChange != nil {
				onChange(ev)
			}
		}
	}
}
