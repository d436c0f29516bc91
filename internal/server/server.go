// Package server provides the HTTP server for the FaceTrace camera overlay system.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mihika/facetrace/internal/app"
	"github.com/mihika/facetrace/internal/capture"
	"github.com/mihika/facetrace/internal/server/api"
	"github.com/mihika/facetrace/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the FaceTrace application.
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

	// Register profile API handler if Store is configured
	if s.config.Store != nil {
		profileHandler := api.NewProfileHandler(s.config.Store)

		// Use a wrapper to route activation requests: /api/profiles/{id}/activate
		profileRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/activate") {
				s.handleActivateProfile(w, r)
				return
			}
			profileHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/profiles", profileRouter)
		s.mux.Handle("/api/profiles/", profileRouter)
	}

	// Register session, stream and overlay endpoints if App is configured
	if s.config.App != nil {
		s.mux.HandleFunc("/api/session", s.handleSession)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/overlay", NewOverlayHandler(s.config.App))
	}

	// Serve static files if StaticDir is configured
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type sessionResponse struct {
	Session  string `json:"session"`
	Facing   string `json:"facing"`
	Mirrored bool   `json:"mirrored"`
	Enabled  bool   `json:"enabled"`
}

type updateSessionRequest struct {
	Facing  string `json:"facing"`
	Enabled *bool  `json:"enabled"`
}

// handleSession handles GET and POST requests to /api/session. GET reports
// the active capture session; POST switches the camera facing and/or toggles
// annotation drawing. A facing switch starts a fresh session, so the session
// ID in the response changes.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	a := s.config.App

	switch r.Method {
	case http.MethodGet:
		// Fall through to the response below

	case http.MethodPost:
		var req updateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeServerError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		if req.Facing != "" {
			facing := capture.Facing(req.Facing)
			if facing != capture.FacingFront && facing != capture.FacingBack {
				writeServerError(w, http.StatusBadRequest, "Invalid facing")
				return
			}
			if err := a.SwitchFacing(facing); err != nil {
				writeServerError(w, http.StatusInternalServerError, "Failed to switch camera")
				return
			}
		}

		if req.Enabled != nil {
			a.SetEnabled(*req.Enabled)
			if s.config.Store != nil {
				value := "0"
				if *req.Enabled {
					value = "1"
				}
				// The in-memory toggle already applied; a persistence failure
				// only costs the setting on the next startup.
				if err := s.config.Store.Settings().Set(store.SettingOverlayEnabled, value); err != nil {
					log.Printf("Failed to save overlay setting: %v", err)
				}
			}
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := sessionResponse{
		Session:  a.State().Session().String(),
		Facing:   string(a.Facing()),
		Mirrored: a.Mirrored(),
		Enabled:  a.IsEnabled(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleActivateProfile handles POST /api/profiles/{id}/activate: it applies
// the stored calibration to the running app and remembers it as the active
// profile for the next startup.
func (s *Server) handleActivateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	id := strings.TrimSuffix(path, "/activate")
	if id == "" || strings.Contains(id, "/") {
		writeServerError(w, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	profile, err := s.config.Store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeServerError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeServerError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	if s.config.App != nil {
		if err := s.config.App.ApplyProfile(profile); err != nil {
			writeServerError(w, http.StatusInternalServerError, "Failed to apply profile")
			return
		}
	}

	if err := s.config.Store.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
		writeServerError(w, http.StatusInternalServerError, "Failed to save active profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"active_profile": profile.ID})
}

// writeServerError writes a JSON error response.
func writeServerError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
