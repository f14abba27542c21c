package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/kalari/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(Config{Store: st}), st
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d, want 200", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestHealthRejectsPost(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/health = %d, want 405", w.Code)
	}
}

func TestStateBeforeFirstTick(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/api/state")
	if w.Code != http.StatusNoContent {
		t.Errorf("GET /api/state = %d, want 204 before first publish", w.Code)
	}
}

func TestStateReturnsLatestPublished(t *testing.T) {
	s, _ := newTestServer(t)

	s.Live().Publish(map[string]string{"stable": "Fist"})
	s.Live().Publish(map[string]string{"stable": "Open Palm"})

	w := get(t, s, "/api/state")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/state = %d, want 200", w.Code)
	}

	var body map[string]string
	decode(t, w, &body)
	if body["stable"] != "Open Palm" {
		t.Errorf("stable = %q, want most recent publish", body["stable"])
	}
}

func TestHighScoreEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	w := get(t, s, "/api/highscore")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/highscore = %d, want 200", w.Code)
	}
	var body map[string]int
	decode(t, w, &body)
	if body["highScore"] != 0 {
		t.Errorf("highScore = %d, want 0 on fresh database", body["highScore"])
	}

	if err := st.Scores().SetHighScore(42); err != nil {
		t.Fatalf("SetHighScore() error: %v", err)
	}

	w = get(t, s, "/api/highscore")
	decode(t, w, &body)
	if body["highScore"] != 42 {
		t.Errorf("highScore = %d, want 42", body["highScore"])
	}
}

func TestRoundsEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	for _, outcome := range []string{store.OutcomePlayer, store.OutcomeDraw} {
		err := st.Rounds().Record(&store.Round{
			Player:     "Rock",
			Opponent:   "Rock",
			Outcome:    outcome,
			Difficulty: "Easy",
		})
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	w := get(t, s, "/api/rounds")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/rounds = %d, want 200", w.Code)
	}

	var body struct {
		Rounds []struct {
			ID      string `json:"id"`
			Player  string `json:"player"`
			Outcome string `json:"outcome"`
		} `json:"rounds"`
	}
	decode(t, w, &body)
	if len(body.Rounds) != 2 {
		t.Fatalf("rounds length = %d, want 2", len(body.Rounds))
	}
	for _, r := range body.Rounds {
		if r.ID == "" {
			t.Error("round missing id")
		}
	}
}

func TestRoundsLimitValidation(t *testing.T) {
	s, _ := newTestServer(t)

	for _, limit := range []string{"0", "-1", "501", "abc"} {
		w := get(t, s, "/api/rounds?limit="+limit)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET /api/rounds?limit=%s = %d, want 400", limit, w.Code)
		}
	}

	w := get(t, s, "/api/rounds?limit=5")
	if w.Code != http.StatusOK {
		t.Errorf("GET /api/rounds?limit=5 = %d, want 200", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	outcomes := []string{store.OutcomePlayer, store.OutcomePlayer, store.OutcomeOpponent}
	for _, o := range outcomes {
		err := st.Rounds().Record(&store.Round{
			Player:     "Paper",
			Opponent:   "Scissors",
			Outcome:    o,
			Difficulty: "Hard",
		})
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	w := get(t, s, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/stats = %d, want 200", w.Code)
	}

	var tally store.Tally
	decode(t, w, &tally)
	if tally.PlayerWins != 2 || tally.OpponentWins != 1 || tally.Draws != 0 {
		t.Errorf("tally = %+v, want 2 player / 1 opponent / 0 draws", tally)
	}
}

func TestStoreEndpointsAbsentWithoutStore(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/rounds", "/api/stats", "/api/highscore"} {
		w := get(t, s, path)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s without store = %d, want 404", path, w.Code)
		}
	}
}

func TestLiveWebSocketReceivesPublishes(t *testing.T) {
	s, _ := newTestServer(t)

	ts := httptest.NewServer(s)
	defer ts.Close()

	// First publish happens before the client connects; it must still
	// arrive as the greeting snapshot.
	s.Live().Publish(map[string]string{"stable": "Fist"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(msg, &body); err != nil {
		t.Fatalf("Failed to decode greeting: %v", err)
	}
	if body["stable"] != "Fist" {
		t.Errorf("greeting stable = %q, want Fist", body["stable"])
	}

	s.Live().Publish(map[string]string{"stable": "Open Palm"})
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read push: %v", err)
	}
	if err := json.Unmarshal(msg, &body); err != nil {
		t.Fatalf("Failed to decode push: %v", err)
	}
	if body["stable"] != "Open Palm" {
		t.Errorf("push stable = %q, want Open Palm", body["stable"])
	}
}

func TestLiveJoinDuringContinuousPublishes(t *testing.T) {
	s, _ := newTestServer(t)

	ts := httptest.NewServer(s)
	defer ts.Close()

	h := s.Live()
	h.Publish(map[string]int{"seq": 0})

	// Hammer the feed from one goroutine while clients join, so the
	// greeting and the pushes contend on each connection.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			default:
				h.Publish(map[string]int{"seq": i})
			}
		}
	}()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	for i := 0; i < 25; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Failed to dial WebSocket: %v", err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read first message: %v", err)
		}
		var body map[string]int
		if err := json.Unmarshal(msg, &body); err != nil {
			t.Fatalf("Malformed first message: %v", err)
		}
		conn.Close()
	}

	close(stop)
	wg.Wait()
}

func TestLivePublishDropsStalledClient(t *testing.T) {
	s, _ := newTestServer(t)

	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	defer conn.Close()

	h := s.Live()

	// Registration happens on the handler goroutine after the dial
	// returns; wait for it before flooding the feed.
	for start := time.Now(); ; {
		h.mu.RLock()
		n := len(h.clients)
		h.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Since(start) > 5*time.Second {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	// The client never reads. Large payloads fill its socket and then
	// its queue; Publish must shed the client instead of waiting on it.
	payload := map[string]string{"frame": strings.Repeat("x", 1<<20)}
	start := time.Now()
	dropped := false
	for i := 0; i < 8*sendBuffer && !dropped; i++ {
		h.Publish(payload)
		h.mu.RLock()
		dropped = len(h.clients) == 0
		h.mu.RUnlock()
	}
	if elapsed := time.Since(start); elapsed > writeTimeout {
		t.Fatalf("Publish blocked for %v behind a stalled client", elapsed)
	}
	if !dropped {
		t.Errorf("stalled client still registered after %d publishes", 8*sendBuffer)
	}

	// Draining the backlog must end with the server closing the
	// connection, not a read timeout.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				t.Error("dropped client was never disconnected")
			}
			break
		}
	}
}
