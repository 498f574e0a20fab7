package ws

import (
	"errors"
	"log"
	"net/http"

	"nhooyr.io/websocket"
)

// Handler upgrades HTTP requests on /ws/rooms/{roomID} and runs the relay
// loop for each participant connection.
//
// A connection moves CONNECTING -> OPEN -> CLOSED: it is registered for
// its room on accept, every valid inbound event is re-broadcast to all
// participants of that room (sender included), and the room registration
// is released exactly once on any disconnect path.
type Handler struct {
	registry *Registry
}

// NewHandler creates a relay handler backed by the given registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// ServeHTTP accepts the WebSocket and relays events until disconnect.
// The room identifier is trusted from the path; access control is the
// HTTP layer's concern.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if roomID == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}

	wsc, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow all origins in dev; tighten in production.
	})
	if err != nil {
		log.Printf("ws: accept error: %v", err)
		return
	}

	conn := NewConn(wsc)
	if !h.registry.Register(roomID, conn) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer func() {
		h.registry.Unregister(roomID, conn)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	h.readLoop(roomID, conn, r)
}

// readLoop processes inbound messages in arrival order until the
// connection closes. Each message produces at most one broadcast.
func (h *Handler) readLoop(roomID string, conn *Conn, r *http.Request) {
	for {
		data, err := conn.Read(r.Context())
		if err != nil {
			// Client close, network failure, or shutdown.
			return
		}

		event, err := DecodeEvent(data)
		if err != nil {
			if errors.Is(err, ErrMalformedEvent) {
				log.Printf("ws: dropping malformed event in room %s", roomID)
			}
			continue
		}

		switch event.(type) {
		case *ProgressEvent, *ChatEvent:
			payload, err := EncodeEvent(event)
			if err != nil {
				log.Printf("ws: encode error: %v", err)
				continue
			}
			h.registry.Broadcast(roomID, payload)
		case *UnknownEvent:
			// Unrecognized type tags are dropped without comment.
		}
	}
}
