package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bidlevel/internal/engine"
)

// Handler wraps the leveling engine for the HTTP API.
type Handler struct {
	Engine EngineInterface
}

func NewHandler(e EngineInterface) *Handler {
	return &Handler{Engine: e}
}

// PingHandler answers "ok" as a server health check.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve *engine.ValidationError
	var nf *engine.NotFoundError
	var is *engine.InconsistentStateError
	var pe *engine.PersistenceError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, nf.Error(), http.StatusNotFound)
	case errors.As(err, &is):
		http.Error(w, is.Error(), http.StatusConflict)
	case errors.As(err, &pe):
		http.Error(w, "Failed to save changes", http.StatusBadGateway)
	case errors.Is(err, engine.ErrNothingToUndo):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// parseLimitParam reads the limit query param with a default and a ceiling.
func parseLimitParam(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= max {
			limit = l
		}
	}
	return limit
}
