package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultSessionLimit is how many sessions GET /api/sessions returns without ?limit.
const DefaultSessionLimit = 20

// SessionLister reads the session history.
type SessionLister interface {
	Recent(limit int) ([]*store.Session, error)
}

// SessionsHandler serves the session history.
type SessionsHandler struct {
	sessions SessionLister
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(sessions SessionLister) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// ServeHTTP handles GET /api/sessions?limit=N.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.sessions.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}
