// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/odemetakip/internal/models"
)

// ErrNotFound is wrapped by every store when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the list and athlete storage operations.
// This abstraction allows swapping storage backends (SQLite, the local
// cache file) without changing the service layer.
type Store interface {
	// CreateList persists a new list. ID and CreatedAt are filled in when
	// empty.
	CreateList(ctx context.Context, list *models.List) error

	// GetList retrieves a list by ID.
	GetList(ctx context.Context, listID string) (*models.List, error)

	// ListLists returns the lists of an owner, oldest first.
	ListLists(ctx context.Context, ownerID string) ([]*models.List, error)

	RenameList(ctx context.Context, listID, name string) error

	// DeleteList removes a list together with its athletes.
	DeleteList(ctx context.Context, listID string) error

	// AddAthlete persists a new athlete. ID, timestamps and a blank
	// PaymentState are filled in when empty.
	AddAthlete(ctx context.Context, athlete *models.Athlete) error

	GetAthlete(ctx context.Context, athleteID string) (*models.Athlete, error)

	// ListAthletes returns the athletes of a list in the order they were
	// added.
	ListAthletes(ctx context.Context, listID string) ([]*models.Athlete, error)

	// UpdateAthletePayments replaces the payment state of one athlete.
	UpdateAthletePayments(ctx context.Context, athleteID string, payments models.PaymentState) error

	RenameAthlete(ctx context.Context, athleteID, name string) error

	DeleteAthlete(ctx context.Context, athleteID string) error

	// Close releases any resources held by the store.
	Close() error
}
