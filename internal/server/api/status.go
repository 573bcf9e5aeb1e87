package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
)

// Controller is the part of a session the status endpoint drives.
type Controller interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

// StatusHandler reports the session status and pauses or resumes it.
type StatusHandler struct {
	session Controller
}

// NewStatusHandler creates a StatusHandler for the given session.
func NewStatusHandler(session Controller) *StatusHandler {
	return &StatusHandler{session: session}
}

type updateStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET, and PUT or POST with {"enabled": bool}.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.session.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Status())
}
