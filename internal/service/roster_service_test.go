package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/roster"
)

func TestSubscribeStreamsSnapshotAndChanges(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)
	ali := addAthlete(t, client, listID, "Ali")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Subscribe.CallServerStream(ctx, connect.NewRequest(&api.SubscribeRequest{ListID: listID}))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer stream.Close()

	view := roster.New(listID)
	if !stream.Receive() {
		t.Fatalf("expected snapshot event: %v", stream.Err())
	}
	view.Apply(stream.Msg().Model())
	if got := view.Snapshot(); len(got) != 1 || got[0].ID != ali.ID {
		t.Fatalf("expected Ali in snapshot, got %+v", got)
	}

	// Once the snapshot arrived the subscription is registered.
	addAthlete(t, client, listID, "Ayşe")
	if _, err := client.TogglePayment.CallUnary(ctx, connect.NewRequest(&api.TogglePaymentRequest{AthleteID: ali.ID, Month: "2025-09"})); err != nil {
		t.Fatalf("TogglePayment failed: %v", err)
	}

	for view.Len() < 2 || !paid(view, ali.ID, "2025-09") {
		if !stream.Receive() {
			t.Fatalf("stream ended early: %v", stream.Err())
		}
		view.Apply(stream.Msg().Model())
	}
}

func paid(r *roster.Roster, athleteID, month string) bool {
	for _, a := range r.Snapshot() {
		if a.ID == athleteID {
			return a.Payments[month]
		}
	}
	return false
}

func TestSubscribeOtherUsersList(t *testing.T) {
	env := setupTestServer(t)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")
	listID := defaultList(t, alice)

	stream, err := bob.Subscribe.CallServerStream(context.Background(), connect.NewRequest(&api.SubscribeRequest{ListID: listID}))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer stream.Close()
	if stream.Receive() {
		t.Fatal("expected no events")
	}
	assertCode(t, stream.Err(), connect.CodeNotFound)
}

func TestMutationsPublishEvents(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := env.broker.Subscribe(ctx, listID)

	a := addAthlete(t, client, listID, "Ali")
	apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: "ali mart ödendi"})
	if _, err := client.DeleteAthlete.CallUnary(ctx, connect.NewRequest(&api.DeleteAthleteRequest{AthleteID: a.ID})); err != nil {
		t.Fatalf("DeleteAthlete failed: %v", err)
	}

	want := []models.EventType{models.EventInsert, models.EventUpdate, models.EventDelete}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type != typ || ev.Athlete.ID != a.ID {
				t.Errorf("expected %s for %s, got %s for %s", typ, a.ID, ev.Type, ev.Athlete.ID)
			}
			if typ == models.EventUpdate && !ev.Athlete.Payments["2026-03"] {
				t.Error("expected March paid in update event")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s event", typ)
		}
	}
}
