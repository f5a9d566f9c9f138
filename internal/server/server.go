// Package server provides the HTTP control surface for the drum kit: live
// tuning parameters, voice previews, the camera preview stream and a
// WebSocket feed of trigger events.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tznthou/day-07-neon-drum/internal/capture"
	"github.com/tznthou/day-07-neon-drum/internal/detector"
	"github.com/tznthou/day-07-neon-drum/internal/server/api"
	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// Config holds the server configuration. Nil fields disable the routes that
// depend on them.
type Config struct {
	StaticDir string
	Camera    capture.Camera
	Detector  *detector.Detector
	Engine    *synth.Engine
	Debug     *capture.DebugView
	// Crop mirrors the sampler's crop setting so the preview overlay is
	// drawn over the sampled region.
	Crop bool
}

// Server is the HTTP server for the drum kit.
type Server struct {
	config  Config
	handler http.Handler
	hub     *Hub
	start   time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		hub:    NewHub(),
		start:  time.Now(),
	}

	router := mux.NewRouter()
	s.setupRoutes(router)
	s.handler = cors.AllowAll().Handler(router)
	return s
}

func (s *Server) setupRoutes(router *mux.Router) {
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/api/events", s.hub).Methods(http.MethodGet)

	if s.config.Detector != nil && s.config.Engine != nil {
		router.Handle("/api/params", api.NewParamsHandler(s.config.Detector, s.config.Engine))
		router.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)

		voices := api.NewVoicesHandler(s.config.Engine)
		router.HandleFunc("/api/voices", voices.List).Methods(http.MethodGet)
		router.HandleFunc("/api/voices/{name}/play", voices.Play).Methods(http.MethodPost)
	}

	if s.config.Camera != nil {
		router.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Crop)).Methods(http.MethodGet)
	}
	if s.config.Debug != nil {
		router.Handle("/api/debug", NewDebugStreamHandler(s.config.Debug)).Methods(http.MethodGet)
	}

	if s.config.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Hub returns the trigger event hub; the detection loop feeds it via
// Broadcast.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleReset handles POST /api/reset and clears the detector's per-cell
// state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.config.Detector.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
