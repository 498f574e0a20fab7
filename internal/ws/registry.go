package ws

import (
	"sync"

	"nhooyr.io/websocket"
)

// Registry tracks which participant connections are currently open for
// which reading room. It is constructed at process start and handed to
// every connection handler; there is no package-level instance.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Conn]struct{}
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[*Conn]struct{}),
	}
}

// Register adds a connection to a room's participant set, creating the set
// on first use. Registering the same connection twice is a no-op. It
// returns false if the registry has been shut down.
func (r *Registry) Register(roomID string, c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[*Conn]struct{})
	}
	r.rooms[roomID][c] = struct{}{}
	return true
}

// Unregister removes a connection from a room. It is a silent no-op when
// the connection is already gone, so the disconnect path and a concurrent
// broadcast cleanup can both call it.
func (r *Registry) Unregister(roomID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conns, ok := r.rooms[roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Broadcast delivers a payload to every connection currently registered
// for the room. A room with no participants is not an error. A connection
// that fails to accept the payload never stops delivery to the rest; it
// is unregistered and closed instead.
func (r *Registry) Broadcast(roomID string, payload []byte) {
	r.mu.RLock()
	conns := r.rooms[roomID]
	// Snapshot the set so the lock is not held across sends.
	targets := make([]*Conn, 0, len(conns))
	for c := range conns {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		if !c.Send(payload) {
			r.Unregister(roomID, c)
			c.Close(websocket.StatusAbnormalClosure, "delivery failed")
		}
	}
}

// Count returns the number of connections registered for a room.
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Shutdown closes every connection and empties the registry. Subsequent
// Register calls are rejected.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	rooms := r.rooms
	r.rooms = make(map[string]map[*Conn]struct{})
	r.mu.Unlock()

	for _, conns := range rooms {
		for c := range conns {
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}
