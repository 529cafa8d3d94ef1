// Package local implements storage.Store on a YAML snapshot file. It is the
// roster kept on the device when no authenticated session exists.
//
// Lifecycle: Open loads the snapshot, every mutation writes it through, and
// Clear discards it when the user signs in.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// version is bumped whenever the snapshot layout changes; older files are
// discarded on load.
const version = 2

type snapshot struct {
	Version  int             `yaml:"version"`
	Lists    []listRecord    `yaml:"lists"`
	Athletes []athleteRecord `yaml:"athletes"`
}

type listRecord struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	CreatedAt int64  `yaml:"created_at"`
}

type athleteRecord struct {
	ID        string          `yaml:"id"`
	ListID    string          `yaml:"list_id"`
	Name      string          `yaml:"name"`
	Payments  map[string]bool `yaml:"payments"`
	CreatedAt int64           `yaml:"created_at"`
	UpdatedAt int64           `yaml:"updated_at"`
}

// Store is a file-backed storage.Store. It is safe for concurrent use.
type Store struct {
	path string

	mu   sync.Mutex
	snap snapshot
}

// Open loads the snapshot at path, creating it (with one default list) when
// it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read cache: %w", err)
	default:
		if err := yaml.Unmarshal(data, &s.snap); err != nil {
			return nil, fmt.Errorf("failed to parse cache %s: %w", path, err)
		}
		if s.snap.Version != version {
			slog.Warn("Discarding local cache with old layout", "path", path, "version", s.snap.Version)
			s.snap = snapshot{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.update(func(snap *snapshot) error {
		snap.Version = version
		snap.ensureList()
		return nil
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Clear removes the snapshot file and resets the store to a single empty
// list.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	s.snap = snapshot{Version: version}
	s.snap.ensureList()
	slog.Info("Local cache cleared", "path", s.path)
	return nil
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error {
	return nil
}

// CreateList adds a list to the snapshot.
func (s *Store) CreateList(_ context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.CreatedAt == 0 {
		list.CreatedAt = time.Now().Unix()
	}
	return s.update(func(snap *snapshot) error {
		snap.Lists = append(snap.Lists, listRecord{ID: list.ID, Name: list.Name, CreatedAt: list.CreatedAt})
		return nil
	})
}

// GetList retrieves a list by ID.
func (s *Store) GetList(_ context.Context, listID string) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.listIndex(listID)
	if i < 0 {
		return nil, fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
	}
	return s.snap.Lists[i].model(), nil
}

// ListLists returns every cached list. Cached lists have no owner, so only
// the empty ownerID matches.
func (s *Store) ListLists(_ context.Context, ownerID string) ([]*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ownerID != "" {
		return nil, nil
	}
	lists := make([]*models.List, len(s.snap.Lists))
	for i, l := range s.snap.Lists {
		lists[i] = l.model()
	}
	return lists, nil
}

// RenameList changes the display name of a list.
func (s *Store) RenameList(_ context.Context, listID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(snap *snapshot) error {
		i := snap.listIndex(listID)
		if i < 0 {
			return fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
		}
		snap.Lists[i].Name = name
		return nil
	})
}

// DeleteList removes a list and its athletes.
func (s *Store) DeleteList(_ context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(snap *snapshot) error {
		i := snap.listIndex(listID)
		if i < 0 {
			return fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
		}
		snap.Lists = append(snap.Lists[:i], snap.Lists[i+1:]...)

		kept := snap.Athletes[:0]
		for _, a := range snap.Athletes {
			if a.ListID != listID {
				kept = append(kept, a)
			}
		}
		snap.Athletes = kept
		return nil
	})
}

// AddAthlete adds an athlete to an existing list.
func (s *Store) AddAthlete(_ context.Context, athlete *models.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.listIndex(athlete.ListID) < 0 {
		return fmt.Errorf("list %s: %w", athlete.ListID, storage.ErrNotFound)
	}
	if athlete.ID == "" {
		athlete.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if athlete.CreatedAt == 0 {
		athlete.CreatedAt = now
	}
	athlete.UpdatedAt = now
	athlete.Payments = calendar.Complete(athlete.Payments)

	return s.update(func(snap *snapshot) error {
		snap.Athletes = append(snap.Athletes, athleteRecord{
			ID:        athlete.ID,
			ListID:    athlete.ListID,
			Name:      athlete.Name,
			Payments:  athlete.Payments.Clone(),
			CreatedAt: athlete.CreatedAt,
			UpdatedAt: athlete.UpdatedAt,
		})
		return nil
	})
}

// GetAthlete retrieves an athlete by ID.
func (s *Store) GetAthlete(_ context.Context, athleteID string) (*models.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.athleteIndex(athleteID)
	if i < 0 {
		return nil, fmt.Errorf("athlete %s: %w", athleteID, storage.ErrNotFound)
	}
	return s.snap.Athletes[i].model(), nil
}

// ListAthletes returns the athletes of a list in insertion order.
func (s *Store) ListAthletes(_ context.Context, listID string) ([]*models.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var athletes []*models.Athlete
	for _, a := range s.snap.Athletes {
		if a.ListID == listID {
			athletes = append(athletes, a.model())
		}
	}
	sort.SliceStable(athletes, func(i, j int) bool { return athletes[i].CreatedAt < athletes[j].CreatedAt })
	return athletes, nil
}

// UpdateAthletePayments replaces the payments of one athlete.
func (s *Store) UpdateAthletePayments(_ context.Context, athleteID string, payments models.PaymentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(snap *snapshot) error {
		i := snap.athleteIndex(athleteID)
		if i < 0 {
			return fmt.Errorf("athlete %s: %w", athleteID, storage.ErrNotFound)
		}
		snap.Athletes[i].Payments = calendar.Complete(payments)
		snap.Athletes[i].UpdatedAt = time.Now().Unix()
		return nil
	})
}

// RenameAthlete changes the display name of an athlete.
func (s *Store) RenameAthlete(_ context.Context, athleteID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(snap *snapshot) error {
		i := snap.athleteIndex(athleteID)
		if i < 0 {
			return fmt.Errorf("athlete %s: %w", athleteID, storage.ErrNotFound)
		}
		snap.Athletes[i].Name = name
		snap.Athletes[i].UpdatedAt = time.Now().Unix()
		return nil
	})
}

// DeleteAthlete removes an athlete by ID.
func (s *Store) DeleteAthlete(_ context.Context, athleteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(snap *snapshot) error {
		i := snap.athleteIndex(athleteID)
		if i < 0 {
			return fmt.Errorf("athlete %s: %w", athleteID, storage.ErrNotFound)
		}
		snap.Athletes = append(snap.Athletes[:i], snap.Athletes[i+1:]...)
		return nil
	})
}

// update applies fn to a copy of the snapshot, writes the copy and only
// then makes it current. On any error the store keeps its previous state.
// Caller holds mu.
func (s *Store) update(fn func(*snapshot) error) error {
	next := s.snap.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := save(s.path, &next); err != nil {
		return err
	}
	s.snap = next
	return nil
}

// ensureList keeps the at-least-one-list invariant.
func (snap *snapshot) ensureList() {
	if len(snap.Lists) > 0 {
		return
	}
	snap.Lists = append(snap.Lists, listRecord{
		ID:        uuid.New().String(),
		Name:      models.DefaultListName,
		CreatedAt: time.Now().Unix(),
	})
}

// save writes snap to path atomically.
func save(path string, snap *snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

func (snap snapshot) clone() snapshot {
	out := snapshot{
		Version:  snap.Version,
		Lists:    append([]listRecord(nil), snap.Lists...),
		Athletes: make([]athleteRecord, len(snap.Athletes)),
	}
	for i, a := range snap.Athletes {
		a.Payments = maps.Clone(a.Payments)
		out.Athletes[i] = a
	}
	return out
}

func (snap *snapshot) listIndex(id string) int {
	for i, l := range snap.Lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (snap *snapshot) athleteIndex(id string) int {
	for i, a := range snap.Athletes {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (l listRecord) model() *models.List {
	return &models.List{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}

func (a athleteRecord) model() *models.Athlete {
	return &models.Athlete{
		ID:        a.ID,
		ListID:    a.ListID,
		Name:      a.Name,
		Payments:  calendar.Complete(a.Payments),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
