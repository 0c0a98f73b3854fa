package cart

import (
	"encoding/json"
	"sync"
)

// MemStorage keeps the serialized sequences in process memory. It
// round-trips through JSON so it exercises the same encoding path as the
// durable backends.
type MemStorage struct {
	mu       sync.Mutex
	cart     []byte
	wishlist []byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{}
}

func (s *MemStorage) LoadCart() ([]LineItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil, false, nil
	}

	var items []LineItem
	if err := json.Unmarshal(s.cart, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *MemStorage) SaveCart(items []LineItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = b
	return nil
}

func (s *MemStorage) LoadWishlist() ([]Game, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wishlist == nil {
		return nil, false, nil
	}

	var items []Game
	if err := json.Unmarshal(s.wishlist, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *MemStorage) SaveWishlist(items []Game) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlist = b
	return nil
}
