package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/catalog"
)

func seededStore(t *testing.T) *catalog.MemStore {
	t.Helper()

	s := catalog.NewMemStore()
	err := s.ReplaceAll(context.Background(), []catalog.Game{
		{ID: "1", Name: "Elden Throne", Price: decimal.RequireFromString("59.99"), Genre: "RPG"},
		{ID: "2", Name: "Star Drift", Price: decimal.RequireFromString("19.99"), Genre: "Racing"},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func TestListGames(t *testing.T) {
	s := &catalog.Server{Store: seededStore(t), Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Games   []catalog.Game `json:"games"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Games) != 2 {
		t.Fatalf("body=%s", rec.Body.String())
	}
	if resp.Games[0].ID != "1" || resp.Games[1].ID != "2" {
		t.Fatalf("not sorted by id: %+v", resp.Games)
	}
}

func TestGetGame(t *testing.T) {
	s := &catalog.Server{Store: seededStore(t), Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}

	var g catalog.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Name != "Star Drift" || !g.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("game=%+v", g)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	s := &catalog.Server{Store: seededStore(t), Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}
