package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSeedURL is the public game-metadata API the storefront seeds
// its catalog from.
const DefaultSeedURL = "https://www.freetogame.com/api/games"

var ErrSeedBadStatus = errors.New("seed source bad status")

// defaultPrice is applied to every seeded game; the source API carries
// free-to-play titles with no price of their own.
var defaultPrice = decimal.NewFromFloat(19.99)

// seedEntry mirrors the source API's field names.
type seedEntry struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	ShortDescription string `json:"short_description"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	ReleaseDate      string `json:"release_date"`
}

type Seeder struct {
	SourceURL string
	Client    *http.Client
	Store     Store
}

func NewSeeder(sourceURL string, store Store) *Seeder {
	if sourceURL == "" {
		sourceURL = DefaultSeedURL
	}
	return &Seeder{
		SourceURL: sourceURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
		Store:     store,
	}
}

// Seed fetches the source catalog and replaces the stored one wholesale,
// so repeated runs never accumulate duplicates. Returns the number of
// games written.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	entries, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}

	games := make([]Game, 0, len(entries))
	for _, e := range entries {
		games = append(games, Game{
			ID:          strconv.FormatInt(e.ID, 10),
			Name:        e.Title,
			Price:       defaultPrice,
			Image:       e.Thumbnail,
			Description: e.ShortDescription,
			Genre:       e.Genre,
			Platform:    e.Platform,
			ReleaseDate: e.ReleaseDate,
		})
	}

	if err := s.Store.ReplaceAll(ctx, games); err != nil {
		return 0, err
	}
	return len(games), nil
}

func (s *Seeder) fetch(ctx context.Context) ([]seedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.SourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrSeedBadStatus, resp.StatusCode)
	}

	var entries []seedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
