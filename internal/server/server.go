// Package server exposes the duel to the browser presentation layer:
// JSON state endpoints, a WebSocket tick feed and the camera stream.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/kalari/internal/capture"
	"github.com/ayusman/kalari/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
}

// Server is the HTTP control plane for the duel.
type Server struct {
	config Config
	mux    *http.ServeMux
	live   *LiveHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		live:   NewLiveHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Live returns the WebSocket hub; the tick loop publishes into it.
func (s *Server) Live() *LiveHandler {
	return s.live
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.Handle("/api/live", s.live)

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/rounds", s.handleRounds)
		s.mux.HandleFunc("/api/stats", s.handleStats)
		s.mux.HandleFunc("/api/highscore", s.handleHighScore)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleState returns the most recent tick output, or 204 before the
// first tick has been published.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest, ok := s.live.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(latest)
}

// handleRounds returns recent resolved rounds, newest first.
// The limit query parameter defaults to 20.
func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rounds, err := s.config.Store.Rounds().ListRecent(limit)
	if err != nil {
		http.Error(w, "Failed to list rounds", http.StatusInternalServerError)
		return
	}

	type roundJSON struct {
		ID         string    `json:"id"`
		Player     string    `json:"player"`
		Opponent   string    `json:"opponent"`
		Outcome    string    `json:"outcome"`
		Difficulty string    `json:"difficulty"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	out := make([]roundJSON, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, roundJSON{
			ID:         round.ID,
			Player:     round.Player,
			Opponent:   round.Opponent,
			Outcome:    round.Outcome,
			Difficulty: round.Difficulty,
			CreatedAt:  round.CreatedAt,
		})
	}

	writeJSON(w, map[string]any{"rounds": out})
}

// handleStats returns all-time outcome counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tally, err := s.config.Store.Rounds().Tally()
	if err != nil {
		http.Error(w, "Failed to tally rounds", http.StatusInternalServerError)
		return
	}

	writeJSON(w, tally)
}

// handleHighScore returns the persisted high score.
func (s *Server) handleHighScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	score, err := s.config.Store.Scores().HighScore()
	if err != nil {
		http.Error(w, "Failed to load high score", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int{"highScore": score})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
