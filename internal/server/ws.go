package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// TriggerEvent is the wire format for one drum hit pushed to WebSocket
// clients.
type TriggerEvent struct {
	Cell       int     `json:"cell"`
	Voice      string  `json:"voice"`
	Brightness float64 `json:"brightness"`
	Timestamp  int64   `json:"timestamp"`
}

// Hub fans trigger events out to connected WebSocket clients. Unlike a
// polling broadcaster it is push-based: the detection loop hands each hit to
// Broadcast and idle connections cost nothing.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// ServeHTTP upgrades the request to a WebSocket and holds it open until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	log.Printf("event client %s connected", id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		log.Printf("event client %s disconnected", id)
	}()

	// Drain incoming messages; clients only listen, but reading is how we
	// notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends the event to every connected client. Write failures drop
// the client.
func (h *Hub) Broadcast(ev TriggerEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, id)
			log.Printf("event client %s dropped: %v", id, err)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
