package purchase

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/identity"
	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

const maxCreateBody = 1 << 20

type createReq struct {
	Games       []GameSnapshot  `json:"games"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type listResp struct {
	Success bool           `json:"success"`
	Games   []GameSnapshot `json:"games"`
}

type listFailure struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Games   []GameSnapshot `json:"games"`
}

// DuplicateGame identifies one already-owned game in a rejected checkout.
type DuplicateGame struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// DuplicateError is the structured rejection for a checkout containing
// games the user already owns. The whole request is refused; nothing in
// it is purchased.
type DuplicateError struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Details string          `json:"details"`
	Count   int             `json:"count"`
	Games   []DuplicateGame `json:"games"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/purchases", s.list)
	r.Post("/purchases", s.create)
	return r
}

func (s *Server) ListHandler() http.HandlerFunc   { return s.list }
func (s *Server) CreateHandler() http.HandlerFunc { return s.create }

// list returns the user's library: the union of games across all of
// their purchase records, deduplicated by id.
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.FromContext(r.Context())
	if !ok {
		kit.WriteJSON(w, http.StatusUnauthorized, listFailure{
			Error: "Unauthorized",
			Games: []GameSnapshot{},
		})
		return
	}

	recs, err := s.Store.ListByUser(r.Context(), u.ID)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list purchases failed", zap.Error(err), zap.String("user_id", u.ID))
		}
		kit.WriteJSON(w, http.StatusInternalServerError, listFailure{
			Error: "Failed to fetch purchases",
			Games: []GameSnapshot{},
		})
		return
	}

	kit.WriteJSON(w, http.StatusOK, listResp{Success: true, Games: flattenOwned(recs)})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, err := decodeCreateRequest(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json")
		return
	}
	if err := validateCreateRequest(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := s.Store.ListByUser(r.Context(), u.ID)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load purchase history failed", zap.Error(err), zap.String("user_id", u.ID))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "Failed to save purchase")
		return
	}

	if dup := findDuplicates(recs, req.Games); len(dup) > 0 {
		kit.WriteErrorBody(w, r, http.StatusBadRequest, newDuplicateError(dup))
		return
	}

	rec := Record{
		ID:           "pur_" + uuid.NewString(),
		UserID:       u.ID,
		Games:        req.Games,
		TotalAmount:  req.TotalAmount,
		PurchaseDate: time.Now().UTC(),
	}

	if err := s.Store.Create(r.Context(), rec); err != nil {
		if errors.Is(err, ErrAlreadyOwned) {
			// Lost a race against a concurrent checkout. Re-read history
			// so the rejection names the winner's games.
			dup := req.Games
			if recs, lerr := s.Store.ListByUser(r.Context(), u.ID); lerr == nil {
				if d := findDuplicates(recs, req.Games); len(d) > 0 {
					dup = d
				}
			}
			kit.WriteErrorBody(w, r, http.StatusBadRequest, newDuplicateError(dup))
			return
		}
		if s.Log != nil {
			s.Log.Error("create purchase failed", zap.Error(err), zap.String("user_id", u.ID))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "Failed to save purchase")
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (createReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req createReq
	if err := dec.Decode(&req); err != nil {
		return createReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return createReq{}, errors.New("extra data after json object")
	}

	return req, nil
}

var (
	errNoGames       = errors.New("games required")
	errBadGame       = errors.New("bad game entry")
	errNegativeTotal = errors.New("totalAmount must be non-negative")
)

func validateCreateRequest(req createReq) error {
	if len(req.Games) == 0 {
		return errNoGames
	}
	seen := make(map[string]struct{}, len(req.Games))
	for _, g := range req.Games {
		if strings.TrimSpace(g.ID) == "" || strings.TrimSpace(g.Name) == "" {
			return errBadGame
		}
		if g.Price.IsNegative() {
			return errBadGame
		}
		if _, dup := seen[g.ID]; dup {
			return errBadGame
		}
		seen[g.ID] = struct{}{}
	}
	if req.TotalAmount.IsNegative() {
		return errNegativeTotal
	}
	return nil
}

// flattenOwned collapses purchase records into the owned-game set,
// keeping first-seen order. Later snapshots for the same id win, which is
// harmless since snapshots of an owned game never change.
func flattenOwned(recs []Record) []GameSnapshot {
	idx := make(map[string]int)
	out := make([]GameSnapshot, 0, 16)

	for _, rec := range recs {
		for _, g := range rec.Games {
			if i, ok := idx[g.ID]; ok {
				out[i] = g
				continue
			}
			idx[g.ID] = len(out)
			out = append(out, g)
		}
	}
	return out
}

func findDuplicates(recs []Record, requested []GameSnapshot) []GameSnapshot {
	owned := make(map[string]struct{})
	for _, rec := range recs {
		for _, g := range rec.Games {
			owned[g.ID] = struct{}{}
		}
	}

	var dup []GameSnapshot
	for _, g := range requested {
		if _, ok := owned[g.ID]; ok {
			dup = append(dup, g)
		}
	}
	return dup
}

func newDuplicateError(dup []GameSnapshot) DuplicateError {
	names := make([]string, 0, len(dup))
	games := make([]DuplicateGame, 0, len(dup))
	for _, g := range dup {
		names = append(names, g.Name)
		games = append(games, DuplicateGame{ID: g.ID, Name: g.Name, Image: g.Image})
	}

	return DuplicateError{
		Title:   "Games Already Owned",
		Message: "Some games in your cart are already in your library. Remove them to continue.",
		Details: "You already own: " + strings.Join(names, ", "),
		Count:   len(dup),
		Games:   games,
	}
}
