// Package memory provides an in-process Store implementation. Data is lost
// on restart; use the SQLite repository for persistence.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type archiveEntry struct {
	monthKey string
	rec      core.TransactionRecord
}

type Store struct {
	mu         sync.Mutex
	active     map[string][]core.TransactionRecord // ownerID -> records
	archive    map[string][]archiveEntry           // ownerID -> archived records
	markers    map[string]string                   // ownerID -> last reset month
	categories map[string][]string                 // ownerID -> custom categories
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		active:     make(map[string][]core.TransactionRecord),
		archive:    make(map[string][]archiveEntry),
		markers:    make(map[string]string),
		categories: make(map[string][]string),
	}
}

func (s *Store) Insert(_ context.Context, rec core.TransactionRecord) (core.TransactionRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.TransactionRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	s.active[rec.OwnerID] = append(s.active[rec.OwnerID], rec)
	return rec, nil
}

func (s *Store) ListActive(_ context.Context, ownerID string) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransactionRecord, len(s.active[ownerID]))
	copy(out, s.active[ownerID])
	return out, nil
}

func (s *Store) Get(_ context.Context, ownerID, id string) (core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.active[ownerID] {
		if r.ID == id {
			return r, nil
		}
	}
	return core.TransactionRecord{}, store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.active[ownerID]
	for i, r := range records {
		if r.ID == id {
			s.active[ownerID] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) AppendToArchive(_ context.Context, monthKey string, rec core.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive[rec.OwnerID] = append(s.archive[rec.OwnerID], archiveEntry{monthKey: monthKey, rec: rec})
	return nil
}

func (s *Store) ListArchive(_ context.Context, ownerID, monthKey string) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TransactionRecord
	for _, e := range s.archive[ownerID] {
		if monthKey == "" || e.monthKey == monthKey {
			out = append(out, e.rec)
		}
	}
	return out, nil
}

func (s *Store) RolloverMarker(_ context.Context, ownerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mk, ok := s.markers[ownerID]
	if !ok {
		return "", store.ErrNotFound
	}
	return mk, nil
}

func (s *Store) SetRolloverMarker(_ context.Context, ownerID, monthKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[ownerID] = monthKey
	return nil
}

func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for owner := range s.active {
		seen[owner] = struct{}{}
	}
	for owner := range s.markers {
		seen[owner] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for owner := range seen {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.categories[ownerID]))
	copy(out, s.categories[ownerID])
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, ownerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories[ownerID] {
		if c == name {
			return nil // already present, keep the call idempotent
		}
	}
	s.categories[ownerID] = append(s.categories[ownerID], name)
	return nil
}
