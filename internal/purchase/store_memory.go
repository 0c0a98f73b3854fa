package purchase

import (
	"context"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	byUser map[string][]Record
}

func NewMemStore() *MemStore {
	return &MemStore{byUser: make(map[string][]Record)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.byUser[userID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Create re-checks ownership under the write lock, so the check and the
// insert are one atomic step even when two checkouts race.
func (s *MemStore) Create(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make(map[string]struct{})
	for _, r := range s.byUser[rec.UserID] {
		for _, g := range r.Games {
			owned[g.ID] = struct{}{}
		}
	}
	for _, g := range rec.Games {
		if _, ok := owned[g.ID]; ok {
			return ErrAlreadyOwned
		}
	}

	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec)
	return nil
}
