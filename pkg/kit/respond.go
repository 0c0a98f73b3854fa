package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// FailureResponse is the storefront error envelope. Error is either a
// plain message string or a structured error object, depending on the
// endpoint.
type FailureResponse struct {
	Success   bool   `json:"success"`
	Error     any    `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, FailureResponse{
		Error:     msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// WriteErrorBody writes a failure envelope whose error field is a
// structured object rather than a message string.
func WriteErrorBody(w http.ResponseWriter, r *http.Request, status int, errBody any) {
	WriteJSON(w, status, FailureResponse{
		Error:     errBody,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
