package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsStore persists setting overrides.
type SettingsStore interface {
	List() ([]store.Setting, error)
	All() (map[string]string, error)
	SetAll(values map[string]string) error
	Delete(key string) error
}

// Validator checks a complete set of overrides before it is saved.
type Validator func(overrides map[string]string) error

// SettingsHandler handles HTTP requests for persisted settings. Saved
// values take effect the next time the program starts.
type SettingsHandler struct {
	store    SettingsStore
	validate Validator
}

// NewSettingsHandler creates a SettingsHandler. A nil validate accepts everything.
func NewSettingsHandler(s SettingsStore, validate Validator) *SettingsHandler {
	return &SettingsHandler{store: s, validate: validate}
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, key)
	case http.MethodDelete:
		h.delete(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listSettingsResponse struct {
	Settings []store.Setting `json:"settings"`
	Keys     []string        `json:"keys"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	if settings == nil {
		settings = []store.Setting{}
	}
	writeJSON(w, http.StatusOK, listSettingsResponse{Settings: settings, Keys: config.Keys()})
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request, key string) {
	all, err := h.store.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	value, ok := all[key]
	if !ok {
		writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

// update handles PUT /api/settings with a JSON object of dotted keys to values.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "no settings given")
		return
	}

	merged, err := h.store.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	for k, v := range values {
		merged[k] = v
	}
	if h.validate != nil {
		if err := h.validate(merged); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.store.SetAll(values); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	h.list(w, r)
}

func (h *SettingsHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.store.Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
