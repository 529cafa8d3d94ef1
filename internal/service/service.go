// Package service implements the Connect RPC surface: accounts, lists,
// athletes, free-text commands and the realtime roster stream.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/auth"
	"github.com/mmynk/odemetakip/internal/middleware"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrDuplicateName = errors.New("an athlete with this name already exists in the list")
	ErrLastList      = errors.New("the last list cannot be deleted")
	ErrUnknownMonth  = errors.New("unknown month")
)

// Publisher receives every roster change made through the services.
type Publisher interface {
	Publish(ev models.RosterEvent)
}

// publish stamps ev with the current time and hands it to p.
func publish(p Publisher, typ models.EventType, athlete models.Athlete) {
	p.Publish(models.RosterEvent{
		Type:    typ,
		ListID:  athlete.ListID,
		Athlete: athlete.Clone(),
		At:      time.Now().UnixNano(),
	})
}

// currentUser returns the caller set by the auth interceptor.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// ownedList loads listID and checks that it belongs to the caller. Lists of
// other users are reported as missing.
func ownedList(ctx context.Context, store storage.Store, listID string) (*models.List, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := store.GetList(ctx, listID)
	if err != nil {
		return nil, storeError(err)
	}
	if list.OwnerID != userID {
		slog.Warn("List owned by another user", "list_id", listID, "user_id", userID)
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("list %s: %w", listID, storage.ErrNotFound))
	}
	return list, nil
}

// ownedAthlete loads athleteID and checks the ownership of its list.
func ownedAthlete(ctx context.Context, store storage.Store, athleteID string) (*models.Athlete, error) {
	athlete, err := store.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := ownedList(ctx, store, athlete.ListID); err != nil {
		return nil, err
	}
	return athlete, nil
}

// storeError maps a storage error to a Connect error.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// athletes dereferences rows returned by the store.
func athletes(rows []*models.Athlete) []models.Athlete {
	out := make([]models.Athlete, len(rows))
	for i, a := range rows {
		out[i] = *a
	}
	return out
}

func toAPI(rows []models.Athlete) []api.Athlete {
	out := make([]api.Athlete, len(rows))
	for i, a := range rows {
		out[i] = api.FromAthlete(a)
	}
	return out
}
