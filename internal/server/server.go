// Package server provides the HTTP server for the hand piano.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handpiano/internal/events"
	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/server/api"
	"github.com/ayusman/handpiano/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Keys      piano.KeyMap
	Frames    FrameSource
	Bus       *events.Bus
	// OnSetting is called for every setting written through the API.
	OnSetting func(key, value string)
}

// Server represents the HTTP server for the hand piano.
type Server struct {
	config  Config
	mux     *http.ServeMux
	start   time.Time
	fingers *FingersHandler
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
	s.mux.Handle("/api/keys", api.NewKeysHandler(s.config.Keys))

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store, s.config.OnSetting))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Bus != nil {
		s.fingers = NewFingersHandler()
		s.config.Bus.OnFrame(s.fingers.Broadcast)
		s.mux.Handle("/api/fingers", s.fingers)
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

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.fingers != nil {
		response["clients"] = s.fingers.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
