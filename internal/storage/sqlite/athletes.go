package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

const athleteColumns = "id, list_id, name, payments, created_at, updated_at"

// AddAthlete persists a new athlete. The list must exist.
func (s *SQLiteStore) AddAthlete(ctx context.Context, athlete *models.Athlete) error {
	if athlete.ID == "" {
		athlete.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if athlete.CreatedAt == 0 {
		athlete.CreatedAt = now
	}
	athlete.UpdatedAt = now
	athlete.Payments = calendar.Complete(athlete.Payments)

	payments, err := encodePayments(athlete.Payments)
	if err != nil {
		return err
	}

	if _, err := s.GetList(ctx, athlete.ListID); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO athletes ("+athleteColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		athlete.ID, athlete.ListID, athlete.Name, payments, athlete.CreatedAt, athlete.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert athlete: %w", err)
	}
	return nil
}

// GetAthlete retrieves an athlete by ID.
func (s *SQLiteStore) GetAthlete(ctx context.Context, athleteID string) (*models.Athlete, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+athleteColumns+" FROM athletes WHERE id = ?",
		athleteID,
	)
	athlete, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("athlete %s: %w", athleteID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete: %w", err)
	}
	return athlete, nil
}

// ListAthletes retrieves the athletes of a list in insertion order.
func (s *SQLiteStore) ListAthletes(ctx context.Context, listID string) ([]*models.Athlete, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+athleteColumns+" FROM athletes WHERE list_id = ? ORDER BY created_at, rowid",
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	var athletes []*models.Athlete
	for rows.Next() {
		athlete, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		athletes = append(athletes, athlete)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate athletes: %w", err)
	}
	return athletes, nil
}

// UpdateAthletePayments replaces the payments of one athlete.
func (s *SQLiteStore) UpdateAthletePayments(ctx context.Context, athleteID string, payments models.PaymentState) error {
	encoded, err := encodePayments(payments)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE athletes SET payments = ?, updated_at = ? WHERE id = ?",
		encoded, time.Now().Unix(), athleteID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payments: %w", err)
	}
	return requireOneRow(res, "athlete", athleteID)
}

// RenameAthlete changes the display name of an athlete.
func (s *SQLiteStore) RenameAthlete(ctx context.Context, athleteID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE athletes SET name = ?, updated_at = ? WHERE id = ?",
		name, time.Now().Unix(), athleteID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename athlete: %w", err)
	}
	return requireOneRow(res, "athlete", athleteID)
}

// DeleteAthlete removes an athlete by ID.
func (s *SQLiteStore) DeleteAthlete(ctx context.Context, athleteID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM athletes WHERE id = ?", athleteID)
	if err != nil {
		return fmt.Errorf("failed to delete athlete: %w", err)
	}
	return requireOneRow(res, "athlete", athleteID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAthlete(row rowScanner) (*models.Athlete, error) {
	athlete := &models.Athlete{}
	var payments string
	if err := row.Scan(&athlete.ID, &athlete.ListID, &athlete.Name, &payments, &athlete.CreatedAt, &athlete.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decodePayments(payments)
	if err != nil {
		return nil, err
	}
	athlete.Payments = p
	return athlete, nil
}
