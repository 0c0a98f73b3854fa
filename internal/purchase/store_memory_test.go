package purchase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heetpatel219/GameLibrary/internal/purchase"
)

func record(userID string, gameIDs ...string) purchase.Record {
	games := make([]purchase.GameSnapshot, 0, len(gameIDs))
	total := decimal.Zero
	for _, id := range gameIDs {
		p := decimal.RequireFromString("19.99")
		games = append(games, purchase.GameSnapshot{ID: id, Name: "Game " + id, Price: p})
		total = total.Add(p)
	}
	return purchase.Record{
		ID:           "pur_" + uuid.NewString(),
		UserID:       userID,
		Games:        games,
		TotalAmount:  total,
		PurchaseDate: time.Now().UTC(),
	}
}

func TestMemStore_CreateEnforcesOwnership(t *testing.T) {
	s := purchase.NewMemStore()
	ctx := context.Background()

	if err := s.Create(ctx, record("u1", "g1", "g2")); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := s.Create(ctx, record("u1", "g2", "g3"))
	if !errors.Is(err, purchase.ErrAlreadyOwned) {
		t.Fatalf("err=%v want ErrAlreadyOwned", err)
	}

	// The conflicting record must not have been stored, even partially.
	recs, _ := s.ListByUser(ctx, "u1")
	if len(recs) != 1 {
		t.Fatalf("records=%d want=1", len(recs))
	}

	// Another user owning the same game is fine.
	if err := s.Create(ctx, record("u2", "g1")); err != nil {
		t.Fatalf("other user create: %v", err)
	}
}

func TestMemStore_ConcurrentCheckoutsOneWinner(t *testing.T) {
	s := purchase.NewMemStore()
	ctx := context.Background()

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, record("u1", "g1")); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins=%d want=1", wins)
	}
	recs, _ := s.ListByUser(ctx, "u1")
	if len(recs) != 1 {
		t.Fatalf("records=%d want=1", len(recs))
	}
}

func TestMemStore_ListByUserIsolation(t *testing.T) {
	s := purchase.NewMemStore()
	ctx := context.Background()

	if err := s.Create(ctx, record("u1", "g1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	recs, err := s.ListByUser(ctx, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("records=%d want=0 for other user", len(recs))
	}
}
