package cart

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	cartFile     = "cart.json"
	wishlistFile = "wishlist.json"
)

// FileStorage persists each sequence as a JSON file under a state
// directory, the local-storage analog for a client running outside a
// browser.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) LoadCart() ([]LineItem, bool, error) {
	var items []LineItem
	ok, err := s.load(cartFile, &items)
	return items, ok, err
}

func (s *FileStorage) SaveCart(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	return s.save(cartFile, items)
}

func (s *FileStorage) LoadWishlist() ([]Game, bool, error) {
	var items []Game
	ok, err := s.load(wishlistFile, &items)
	return items, ok, err
}

func (s *FileStorage) SaveWishlist(items []Game) error {
	if items == nil {
		items = []Game{}
	}
	return s.save(wishlistFile, items)
}

func (s *FileStorage) load(name string, v any) (bool, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStorage) save(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(s.dir, name))
}
