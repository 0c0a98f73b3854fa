package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Heetpatel219/GameLibrary/internal/catalog"
)

const seedPayload = `[
	{"id": 540, "title": "Overwatch 2", "thumbnail": "https://cdn.example/540.jpg",
	 "short_description": "Hero shooter.", "genre": "Shooter", "platform": "PC (Windows)",
	 "release_date": "2022-10-04"},
	{"id": 516, "title": "PUBG: BATTLEGROUNDS", "thumbnail": "https://cdn.example/516.jpg",
	 "short_description": "Battle royale.", "genre": "Shooter", "platform": "PC (Windows)",
	 "release_date": "2022-01-12"}
]`

func TestSeed(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seedPayload))
	}))
	t.Cleanup(src.Close)

	store := catalog.NewMemStore()
	// Pre-existing entries must be replaced, not accumulated.
	if err := store.ReplaceAll(context.Background(), []catalog.Game{{ID: "old", Name: "Stale"}}); err != nil {
		t.Fatalf("pre-seed: %v", err)
	}

	seeder := catalog.NewSeeder(src.URL, store)
	n, err := seeder.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("seeded=%d want=2", n)
	}

	games, err := store.ListSortedByID(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games=%d want=2 (old catalog must be gone)", len(games))
	}

	g, ok, err := store.Get(context.Background(), "540")
	if err != nil || !ok {
		t.Fatalf("get 540: ok=%v err=%v", ok, err)
	}
	if g.Name != "Overwatch 2" || g.Genre != "Shooter" || g.Image != "https://cdn.example/540.jpg" {
		t.Fatalf("game=%+v", g)
	}
	if !g.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("price=%s want default 19.99", g.Price)
	}
}

func TestSeed_BadStatus(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(src.Close)

	store := catalog.NewMemStore()
	if err := store.ReplaceAll(context.Background(), []catalog.Game{{ID: "g1", Name: "Keep"}}); err != nil {
		t.Fatalf("pre-seed: %v", err)
	}

	seeder := catalog.NewSeeder(src.URL, store)
	if _, err := seeder.Seed(context.Background()); err == nil {
		t.Fatal("want error on bad source status")
	}

	// A failed fetch must leave the existing catalog intact.
	games, _ := store.ListSortedByID(context.Background())
	if len(games) != 1 || games[0].ID != "g1" {
		t.Fatalf("catalog modified by failed seed: %+v", games)
	}
}
