package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Game is the snapshot of catalog metadata a cart entry is created from.
type Game struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// LineItem is a cart entry. Quantity aggregates repeated adds of the same
// game; the price/name/image snapshot is frozen at first add.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// Store holds one session's cart and wishlist. State is hydrated once from
// durable storage and mirrored back on every mutation after that; writes
// before hydration are suppressed so an empty initial state never clobbers
// persisted data.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	wishlist []Game
	addCount int
	loaded   bool

	storage Storage
	log     *zap.Logger
}

func NewStore(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: storage, log: log}
}

// Load hydrates the cart and wishlist from durable storage. Absent state
// starts empty. The badge counter starts at the number of distinct saved
// items, matching the storefront's hydration rule.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items, ok, err := s.storage.LoadCart(); err != nil {
		s.log.Warn("cart hydration failed", zap.Error(err))
	} else if ok {
		s.items = items
		s.addCount = len(items)
	}

	if wl, ok, err := s.storage.LoadWishlist(); err != nil {
		s.log.Warn("wishlist hydration failed", zap.Error(err))
	} else if ok {
		s.wishlist = wl
	}

	s.loaded = true
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// AddToCart appends a new line item with quantity 1, or bumps the quantity
// of an existing entry leaving its snapshot untouched. The badge counter
// increments on every call, tracking add events rather than distinct
// items; that asymmetry is observed storefront behavior and is kept.
func (s *Store) AddToCart(g Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.items {
		if s.items[i].ID == g.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{
			ID:       g.ID,
			Name:     g.Name,
			Price:    g.Price,
			Image:    g.Image,
			Quantity: 1,
		})
	}

	s.addCount++
	s.persistCart()
}

// RemoveFromCart drops the line item entirely, regardless of quantity.
// The badge counter decrements by exactly one either way.
func (s *Store) RemoveFromCart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}

	s.addCount--
	s.persistCart()
}

// UpdateQuantity sets the line item's quantity directly. Quantities below
// one are rejected as invalid and leave the cart unchanged.
func (s *Store) UpdateQuantity(id string, qty int) {
	if qty < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = qty
			break
		}
	}

	s.persistCart()
}

// AddToWishlist inserts the game if absent. Wishlist entries have set
// semantics keyed by id.
func (s *Store) AddToWishlist(g Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.wishlist {
		if w.ID == g.ID {
			return
		}
	}

	s.wishlist = append(s.wishlist, g)
	s.persistWishlist()
}

func (s *Store) RemoveFromWishlist(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wishlist {
		if s.wishlist[i].ID == id {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			break
		}
	}

	s.persistWishlist()
}

func (s *Store) IsInCart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) IsInWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.wishlist {
		if w.ID == id {
			return true
		}
	}
	return false
}

// Total is the exact sum of price times quantity over all line items,
// recomputed on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Count is the add-event badge counter, not the distinct item count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCount
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Wishlist() []Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Game, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

// Clear empties the cart after a successful checkout. The wishlist keeps
// its independent lifecycle.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.addCount = 0
	s.persistCart()
}

// persistCart mirrors cart state to durable storage. Writes are
// best-effort and suppressed until hydration has completed. Callers hold
// s.mu.
func (s *Store) persistCart() {
	if !s.loaded {
		return
	}
	if err := s.storage.SaveCart(s.items); err != nil {
		s.log.Warn("cart persist failed", zap.Error(err))
	}
}

func (s *Store) persistWishlist() {
	if !s.loaded {
		return
	}
	if err := s.storage.SaveWishlist(s.wishlist); err != nil {
		s.log.Warn("wishlist persist failed", zap.Error(err))
	}
}
