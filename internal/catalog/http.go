package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

type listResp struct {
	Success bool   `json:"success"`
	Games   []Game `json:"games"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/games", s.list)
	r.Get("/games/{id}", s.get)
	return r
}

func (s *Server) ListHandler() http.HandlerFunc { return s.list }
func (s *Server) GetHandler() http.HandlerFunc  { return s.get }

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	games, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list games failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "Failed to fetch games")
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Success: true, Games: games})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get game failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "Game not found")
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}
