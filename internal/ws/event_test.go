package ws

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeProgressEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"progress_update","user":"alice","current_page":10}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	progress, ok := ev.(*ProgressEvent)
	if !ok {
		t.Fatalf("expected ProgressEvent, got %T", ev)
	}
	if progress.User != "alice" || progress.CurrentPage != 10 {
		t.Errorf("unexpected fields: %+v", progress)
	}
}

func TestDecodeProgressEventPageZero(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"progress_update","user":"alice","current_page":0}`))
	if err != nil {
		t.Fatalf("page 0 should be valid: %v", err)
	}
	if ev.(*ProgressEvent).CurrentPage != 0 {
		t.Error("expected page 0")
	}
}

func TestDecodeChatEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"chat_message","user":"bob","message":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chat, ok := ev.(*ChatEvent)
	if !ok {
		t.Fatalf("expected ChatEvent, got %T", ev)
	}
	if chat.User != "bob" || chat.Message != "hi" {
		t.Errorf("unexpected fields: %+v", chat)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unknown, ok := ev.(*UnknownEvent)
	if !ok {
		t.Fatalf("expected UnknownEvent, got %T", ev)
	}
	if unknown.Type != "ping" {
		t.Errorf("expected type ping, got %q", unknown.Type)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":              `not json`,
		"no type":               `{"user":"alice"}`,
		"empty type":            `{"type":""}`,
		"progress no user":      `{"type":"progress_update","current_page":3}`,
		"progress no page":      `{"type":"progress_update","user":"alice"}`,
		"progress negative":     `{"type":"progress_update","user":"alice","current_page":-1}`,
		"progress string page":  `{"type":"progress_update","user":"alice","current_page":"ten"}`,
		"chat no user":          `{"type":"chat_message","message":"hi"}`,
		"chat empty message":    `{"type":"chat_message","user":"bob","message":""}`,
		"chat missing message":  `{"type":"chat_message","user":"bob"}`,
	}
	for name, payload := range cases {
		if _, err := DecodeEvent([]byte(payload)); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("%s: expected ErrMalformedEvent, got %v", name, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := EncodeEvent(&ProgressEvent{User: "alice", CurrentPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("encoded payload is not JSON: %v", err)
	}
	if wire["type"] != "progress_update" || wire["user"] != "alice" || wire["current_page"] != float64(10) {
		t.Errorf("unexpected wire shape: %v", wire)
	}

	data, err = EncodeEvent(&ChatEvent{User: "bob", Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if chat := ev.(*ChatEvent); chat.Message != "hi" {
		t.Errorf("round trip lost message: %+v", chat)
	}
}

func TestEncodeUnknownRejected(t *testing.T) {
	if _, err := EncodeEvent(&UnknownEvent{Type: "ping"}); err == nil {
		t.Fatal("expected error encoding unknown event")
	}
}
