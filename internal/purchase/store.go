package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// GameSnapshot is a frozen copy of a game's metadata and price at
// purchase time. Prices are never re-derived from the catalog later.
type GameSnapshot struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Record is one completed purchase. Records are immutable once written;
// there is no refund or cancel path.
type Record struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Games        []GameSnapshot  `json:"games"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

// ErrAlreadyOwned is returned by Create when any game in the record is
// already owned by the user. Stores enforce this atomically, so two
// racing checkouts for the same game cannot both commit.
var ErrAlreadyOwned = errors.New("game already owned")

type Store interface {
	// ListByUser returns all purchase records for the user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	// Create persists exactly one record, or nothing at all.
	Create(ctx context.Context, rec Record) error
	Ping(ctx context.Context) error
}
