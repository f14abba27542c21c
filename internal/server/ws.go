package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendBuffer bounds how far a client may lag behind the tick loop
	// before it is dropped.
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local connections only
	},
}

// LiveHandler pushes every tick's output to connected WebSocket clients
// and remembers the most recent payload for the /api/state endpoint.
// Each connection has a buffered send queue drained by its own writer
// goroutine, so a stalled browser never blocks the tick loop and the
// connection only ever has one writer.
type LiveHandler struct {
	clients map[*websocket.Conn]chan []byte
	latest  []byte
	mu      sync.RWMutex
}

// NewLiveHandler creates a LiveHandler with no clients.
func NewLiveHandler() *LiveHandler {
	return &LiveHandler{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	send := make(chan []byte, sendBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	// Queue the latest snapshot first so a new client renders without
	// waiting for the next tick. Publishes land behind it in order.
	if h.latest != nil {
		send <- h.latest
	}
	h.mu.Unlock()

	go h.writeLoop(conn, send)
	defer h.drop(conn)

	// Keep the connection alive by draining client messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writeLoop is the connection's only writer. It exits when the send
// queue is closed or a write fails.
func (h *LiveHandler) writeLoop(conn *websocket.Conn, send chan []byte) {
	defer conn.Close()
	for msg := range send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// drop unregisters conn and closes its send queue, which stops the
// writer. Safe to call for a client Publish already removed.
func (h *LiveHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
}

// Publish marshals v and queues it for all connected clients. Marshal
// failures are swallowed; the feed is best effort. Clients whose queue
// is full are dropped rather than waited on.
func (h *LiveHandler) Publish(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.latest = msg
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			delete(h.clients, conn)
			close(send)
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recently published payload, if any.
func (h *LiveHandler) Latest() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.latest != nil
}
