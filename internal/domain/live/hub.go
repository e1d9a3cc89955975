package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is one item on the admin live feed
type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data,omitempty"`
}

// Connection represents one connected admin console
type Connection struct {
	Send chan []byte
}

// Hub fans delivery and ingestion events out to connected admin consoles.
// Broadcasting is fire-and-forget; a client whose buffer is full misses
// the event.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewHub creates a new live feed hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte, 64),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	defer close(h.doneCh)

	for {
		select {
		case <-h.stopCh:
			h.mu.Lock()
			for conn := range h.connections {
				close(conn.Send)
				delete(h.connections, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			log.Debug().Msg("Admin console connected to live feed")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Debug().Msg("Admin console disconnected from live feed")

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.connections {
				select {
				case conn.Send <- data:
				default:
					// Buffer full, skip this event
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and closes every client
func (h *Hub) Stop() {
	close(h.stopCh)
	<-h.doneCh
}

// Register adds a connection; no-op once the hub is stopped
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.stopCh:
	}
}

// Unregister removes a connection; no-op once the hub is stopped, where
// shutdown already closed every send channel
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.stopCh:
	}
}

// Publish broadcasts an event to every connected console. Never blocks
// the caller; the feed drops events when the hub is saturated.
func (h *Hub) Publish(event string, data interface{}) {
	payload, err := json.Marshal(Event{Type: event, At: time.Now().UTC(), Data: data})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal live event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// ConnectionCount returns the number of connected consoles
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
