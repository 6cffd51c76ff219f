package relay

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Event is the wire envelope for every relay message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub is the connection registry for real-time fan-out. Connections are
// keyed by the authenticated user so events can target a single user's
// room or every connected client. Delivery is at-most-once: a failed
// write evicts the connection and the event is not retried.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]uint
	users map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]uint),
		users: make(map[uint]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Join(conn *websocket.Conn, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = userID

	if h.users[userID] == nil {
		h.users[userID] = make(map[*websocket.Conn]bool)
	}

	h.users[userID][conn] = true
}

func (h *Hub) Leave(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.evict(conn)
}

// evict removes a connection from both indexes. Caller must hold h.mu.
func (h *Hub) evict(conn *websocket.Conn) {
	userID, exists := h.conns[conn]

	if !exists {
		return
	}

	delete(h.conns, conn)

	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)

		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// Broadcast fans an event out to every connected client.
func (h *Hub) Broadcast(event string, data interface{}) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	h.send(targets, Event{Event: event, Data: data})
}

// SendToUser delivers an event to every connection in one user's room.
func (h *Hub) SendToUser(userID uint, event string, data interface{}) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.users[userID]))
	for conn := range h.users[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	h.send(targets, Event{Event: event, Data: data})
}

func (h *Hub) send(targets []*websocket.Conn, event Event) {
	for _, conn := range targets {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for relay event %q: %v", event.Event, err)
			continue
		}

		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Failed to deliver relay event %q: %v", event.Event, err)

			h.mu.Lock()
			h.evict(conn)
			h.mu.Unlock()

			conn.Close()
		}
	}
}

// ConnectionCount reports the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}
