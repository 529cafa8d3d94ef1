package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

// Subscriber opens a feed of roster changes for one list.
type Subscriber interface {
	Subscribe(ctx context.Context, listID string) <-chan models.RosterEvent
}

// RosterService implements the Connect RosterService.
type RosterService struct {
	store storage.Store
	feed  Subscriber
}

// NewRosterService creates a new RosterService.
func NewRosterService(store storage.Store, feed Subscriber) *RosterService {
	return &RosterService{store: store, feed: feed}
}

// Subscribe streams the list's current athletes as insert events, then
// every change until the client goes away. Changes racing with the initial
// load may be sent twice; receivers merge by timestamp.
func (s *RosterService) Subscribe(ctx context.Context, req *connect.Request[api.SubscribeRequest], stream *connect.ServerStream[api.RosterEvent]) error {
	slog.Info("Subscribe request received", "list_id", req.Msg.ListID)

	if _, err := ownedList(ctx, s.store, req.Msg.ListID); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := s.feed.Subscribe(ctx, req.Msg.ListID)

	// Stamped before the read so a change committed meanwhile still wins.
	at := time.Now().UnixNano()
	rows, err := s.store.ListAthletes(ctx, req.Msg.ListID)
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	for _, a := range rows {
		ev := models.RosterEvent{Type: models.EventInsert, ListID: a.ListID, Athlete: *a, At: at}
		if err := stream.Send(ptr(api.FromEvent(ev))); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Subscription closed", "list_id", req.Msg.ListID)
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(ptr(api.FromEvent(ev))); err != nil {
				slog.Warn("Subscription send failed", "list_id", req.Msg.ListID, "error", err)
				return err
			}
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
