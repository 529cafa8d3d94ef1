package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/odemetakip/internal/models"
)

func athlete(id, name string, createdAt int64, paid ...string) models.Athlete {
	p := models.PaymentState{}
	for _, k := range paid {
		p[k] = true
	}
	return models.Athlete{ID: id, ListID: "l", Name: name, Payments: p, CreatedAt: createdAt}
}

func ev(t models.EventType, a models.Athlete, at int64) models.RosterEvent {
	return models.RosterEvent{Type: t, ListID: "l", Athlete: a, At: at}
}

func TestLoadAndSnapshotOrder(t *testing.T) {
	r := New("l")
	r.Load([]models.Athlete{
		athlete("b", "Ayşe Yılmaz", 2),
		athlete("a", "Ali Veli", 1),
	}, 10)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Ali Veli", snap[0].Name)
	assert.Equal(t, "Ayşe Yılmaz", snap[1].Name)
	assert.Len(t, snap[0].Payments, 13)
}

func TestIgnoresOtherLists(t *testing.T) {
	r := New("l")
	assert.False(t, r.Apply(models.RosterEvent{Type: models.EventInsert, ListID: "other", Athlete: athlete("x", "X", 1)}))
	assert.Equal(t, 0, r.Len())
}

func TestLastWriterWinsPerField(t *testing.T) {
	r := New("l")
	r.Apply(ev(models.EventInsert, athlete("a", "Ali", 1), 10))

	// A later write to January and an older write to February.
	r.Apply(ev(models.EventUpdate, models.Athlete{ID: "a", Payments: models.PaymentState{"2026-01": true}}, 30))
	r.Apply(ev(models.EventUpdate, models.Athlete{ID: "a", Name: "Ali Veli", Payments: models.PaymentState{"2026-01": false, "2026-02": true}}, 20))

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Payments["2026-01"], "newer January write must survive")
	assert.True(t, snap[0].Payments["2026-02"], "February was only written once")
	assert.Equal(t, "Ali Veli", snap[0].Name)
}

func TestMergeIsOrderIndependent(t *testing.T) {
	events := []models.RosterEvent{
		ev(models.EventInsert, athlete("a", "Ali", 1), 10),
		ev(models.EventUpdate, models.Athlete{ID: "a", Name: "Ali V", Payments: models.PaymentState{"2026-03": true}}, 20),
		ev(models.EventUpdate, models.Athlete{ID: "a", Name: "Ali W", Payments: models.PaymentState{"2026-03": false}}, 20),
		ev(models.EventInsert, athlete("b", "Ayşe", 2), 11),
		ev(models.EventDelete, models.Athlete{ID: "b"}, 25),
	}

	forward := New("l")
	for _, e := range events {
		forward.Apply(e)
	}
	backward := New("l")
	for i := len(events) - 1; i >= 0; i-- {
		backward.Apply(events[i])
	}

	assert.Equal(t, forward.Snapshot(), backward.Snapshot())
	snap := forward.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Ali W", snap[0].Name, "larger name wins a tie")
	assert.True(t, snap[0].Payments["2026-03"], "paid wins a tie")
}

func TestDelete(t *testing.T) {
	r := New("l")
	r.Apply(ev(models.EventInsert, athlete("a", "Ali", 1), 10))
	r.Apply(ev(models.EventDelete, models.Athlete{ID: "a"}, 10))
	assert.Equal(t, 0, r.Len(), "delete wins a tie with insert")

	r.Apply(ev(models.EventUpdate, models.Athlete{ID: "a", Name: "Stale"}, 5))
	assert.Equal(t, 0, r.Len(), "older update does not resurrect")

	r.Apply(ev(models.EventInsert, athlete("a", "Ali", 1), 40))
	assert.Equal(t, 1, r.Len(), "re-insert after delete")
}

func TestVisible(t *testing.T) {
	r := New("l")
	r.Load([]models.Athlete{athlete("a", "Ali Veli", 1), athlete("b", "Ayşe Yılmaz", 2)}, 1)
	assert.Len(t, r.Visible(""), 2)
	got := r.Visible("AYSE")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestRun(t *testing.T) {
	r := New("l")
	ch := make(chan models.RosterEvent, 3)
	ch <- ev(models.EventInsert, athlete("a", "Ali", 1), 1)
	ch <- models.RosterEvent{Type: models.EventInsert, ListID: "other", Athlete: athlete("x", "X", 1), At: 1}
	ch <- ev(models.EventInsert, athlete("b", "Ayşe", 2), 2)
	close(ch)

	var seen int
	err := r.Run(context.Background(), ch, func(models.RosterEvent) { seen++ })
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
	assert.Equal(t, 2, r.Len())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New("l").Run(ctx, make(chan models.RosterEvent), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
