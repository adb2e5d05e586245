package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	t "archmap/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served same-origin in practice; watch mode also
	// opens it from file:// during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans analysis results out to connected websocket clients and keeps
// the latest result for late joiners.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	latest  *t.AnalysisResult
}

func NewHub() *Hub {
	return &Hub{clients: map[*websocket.Conn]struct{}{}}
}

// Latest returns the most recently published result, or nil.
func (h *Hub) Latest() *t.AnalysisResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Publish stores result and pushes it to every connected client. Clients
// that fail to write are dropped.
func (h *Hub) Publish(result *t.AnalysisResult) {
	h.mu.Lock()
	h.latest = result
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(result); err != nil {
			log.Printf("server: dropping websocket client: %v", err)
			h.remove(c)
		}
	}
}

// HandleWS upgrades the connection, sends the latest result, and keeps
// the client registered until it closes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	latest := h.latest
	h.mu.Unlock()

	if latest != nil {
		if err := conn.WriteJSON(latest); err != nil {
			h.remove(conn)
			return
		}
	}

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}
