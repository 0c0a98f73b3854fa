package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Game is one storefront catalog entry. Cart line items and purchase
// snapshots are frozen copies of these fields.
type Game struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
	Genre       string          `json:"genre,omitempty"`
	Platform    string          `json:"platform,omitempty"`
	ReleaseDate string          `json:"release_date,omitempty"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Game, error)
	Get(ctx context.Context, id string) (Game, bool, error)
	// ReplaceAll swaps the whole catalog for the given set, used by the
	// seeder to avoid duplicate entries on re-seed.
	ReplaceAll(ctx context.Context, games []Game) error
}
