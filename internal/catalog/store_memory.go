package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Game
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Game{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Game, 0, len(s.m))
	for _, g := range s.m {
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Game, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.m[id]
	return g, ok, nil
}

func (s *MemStore) ReplaceAll(ctx context.Context, games []Game) error {
	m := make(map[string]Game, len(games))
	for _, g := range games {
		m[g.ID] = g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m
	return nil
}
