package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

// CreateList persists a new list to the database.
func (s *SQLiteStore) CreateList(ctx context.Context, list *models.List) error {
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.CreatedAt == 0 {
		list.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lists (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)",
		list.ID, list.OwnerID, list.Name, list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	return nil
}

// GetList retrieves a list by ID.
func (s *SQLiteStore) GetList(ctx context.Context, listID string) (*models.List, error) {
	list := &models.List{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, created_at FROM lists WHERE id = ?",
		listID,
	).Scan(&list.ID, &list.OwnerID, &list.Name, &list.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// ListLists retrieves every list of an owner, oldest first.
func (s *SQLiteStore) ListLists(ctx context.Context, ownerID string) ([]*models.List, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner_id, name, created_at FROM lists WHERE owner_id = ? ORDER BY created_at, rowid",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list := &models.List{}
		if err := rows.Scan(&list.ID, &list.OwnerID, &list.Name, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}
	return lists, nil
}

// RenameList changes the display name of a list.
func (s *SQLiteStore) RenameList(ctx context.Context, listID, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE lists SET name = ? WHERE id = ?", name, listID)
	if err != nil {
		return fmt.Errorf("failed to rename list: %w", err)
	}
	return requireOneRow(res, "list", listID)
}

// DeleteList removes a list; its athletes go with it (ON DELETE CASCADE).
func (s *SQLiteStore) DeleteList(ctx context.Context, listID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", listID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return requireOneRow(res, "list", listID)
}

// requireOneRow turns a zero-row UPDATE/DELETE into storage.ErrNotFound.
func requireOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
