// Package server provides the local HTTP API of the mudra gesture controller.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Session is the running gesture session as seen by the API.
type Session interface {
	Status() app.Status
	SetEnabled(enabled bool)
	Subscribe() (<-chan control.Result, func())
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Session   Session
	// Validate checks settings overrides before they are saved.
	Validate api.Validator
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Session != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Session))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Session))
	}

	if s.config.Store != nil {
		settings := api.NewSettingsHandler(s.config.Store.Settings(), s.config.Validate)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
		s.mux.Handle("/api/sessions", api.NewSessionsHandler(s.config.Store.Sessions()))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// health is the /api/health response body.
type health struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Session string `json:"session,omitempty"`
	Running bool   `json:"running"`
}

// handleHealth reports liveness and, when a session is attached, whether
// its frame loop is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := health{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Millisecond).String(),
	}
	if s.config.Session != nil {
		st := s.config.Session.Status()
		resp.Session, resp.Running = st.SessionID, st.Running
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("health encode error: %v", err)
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("API listening on http://%s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
