package ws

import (
	"encoding/json"
	"errors"
)

// ErrMalformedEvent is returned when an inbound frame is not valid JSON,
// has no type tag, or is missing a required field for its type. The relay
// drops such frames without closing the connection.
var ErrMalformedEvent = errors.New("malformed event")

// Event is a decoded relay event. Exactly three kinds exist: progress
// updates, chat messages, and the unknown branch for unrecognized types.
type Event interface {
	eventType() string
}

// ProgressEvent conveys a user's current reading position.
type ProgressEvent struct {
	User        string
	CurrentPage int
}

func (*ProgressEvent) eventType() string { return "progress_update" }

// ChatEvent conveys a free-text chat line.
type ChatEvent struct {
	User    string
	Message string
}

func (*ChatEvent) eventType() string { return "chat_message" }

// UnknownEvent carries an unrecognized type tag. The relay ignores it.
type UnknownEvent struct {
	Type string
}

func (*UnknownEvent) eventType() string { return "unknown" }

// frame is the wire shape of every relay event.
type frame struct {
	Type        string `json:"type"`
	User        string `json:"user,omitempty"`
	CurrentPage *int   `json:"current_page,omitempty"`
	Message     string `json:"message,omitempty"`
}

// DecodeEvent parses an inbound frame into an Event. Recognized types with
// missing or invalid required fields are malformed; an unrecognized type
// decodes to UnknownEvent so the caller can drop it silently.
func DecodeEvent(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedEvent
	}
	if f.Type == "" {
		return nil, ErrMalformedEvent
	}

	switch f.Type {
	case "progress_update":
		if f.User == "" || f.CurrentPage == nil || *f.CurrentPage < 0 {
			return nil, ErrMalformedEvent
		}
		return &ProgressEvent{User: f.User, CurrentPage: *f.CurrentPage}, nil
	case "chat_message":
		if f.User == "" || f.Message == "" {
			return nil, ErrMalformedEvent
		}
		return &ChatEvent{User: f.User, Message: f.Message}, nil
	default:
		return &UnknownEvent{Type: f.Type}, nil
	}
}

// EncodeEvent marshals an event back to its wire shape. UnknownEvent is
// never re-broadcast and encodes to an error.
func EncodeEvent(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case *ProgressEvent:
		page := ev.CurrentPage
		return json.Marshal(frame{Type: "progress_update", User: ev.User, CurrentPage: &page})
	case *ChatEvent:
		return json.Marshal(frame{Type: "chat_message", User: ev.User, Message: ev.Message})
	default:
		return nil, ErrMalformedEvent
	}
}
