package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/nr-downlink/internal/render"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string      `json:"type"`
	Job     string      `json:"job,omitempty"`
	Payload interface{} `json:"payload"`
}

// WSHub manages WebSocket connections.
type WSHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("[INFO] WebSocket client connected (%d total)", len(h.clients))
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[conn] {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	log.Printf("[INFO] WebSocket client disconnected (%d remaining)", len(h.clients))
}

// Clients returns the number of connected clients.
func (h *WSHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients. Writes are
// serialised because a connection supports one concurrent writer.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ERROR] WebSocket marshal error: %v", err)
		return
	}

	h.mu.Lock()
	var failed []*websocket.Conn
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[WARN] WebSocket write error: %v", err)
			failed = append(failed, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range failed {
		h.RemoveClient(conn)
	}
}

// BroadcastStatus sends a job status update to all clients.
func (h *WSHub) BroadcastStatus(job, status, message string) {
	h.Broadcast(WSMessage{
		Type: "status",
		Job:  job,
		Payload: map[string]string{
			"status":  status,
			"message": message,
		},
	})
}

// BroadcastUser sends one decoded user to all clients.
func (h *WSHub) BroadcastUser(job string, rep render.UserReport) {
	h.Broadcast(WSMessage{
		Type:    "user",
		Job:     job,
		Payload: rep,
	})
}
