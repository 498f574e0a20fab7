package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	// sendBufferSize is the number of broadcasts that can be queued per
	// connection before sends start failing.
	sendBufferSize = 16

	// writeTimeout is the max time to wait for a single write to complete.
	writeTimeout = 5 * time.Second
)

// Conn is one live participant connection. It owns a buffered send channel
// drained by a write pump goroutine, so a slow reader never blocks a
// broadcast for the rest of the room.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewConn wraps an accepted WebSocket connection and starts its write pump.
func NewConn(wsc *websocket.Conn) *Conn {
	c := &Conn{
		ws:   wsc,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send queues a payload for delivery. It returns false if the connection
// is closed or its buffer is full, in which case the caller should treat
// the connection as stale.
func (c *Conn) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		log.Printf("ws: send buffer full, dropping connection")
		return false
	}
}

// Read returns the next inbound message. It blocks until a message
// arrives, the peer closes, or ctx is cancelled.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	return data, err
}

// Close shuts the connection down. It is idempotent: the relay's deferred
// cleanup and a shutdown sweep may both call it.
func (c *Conn) Close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(code, reason)
	})
}

// writePump drains the send channel, writing each payload to the socket.
// It exits when the connection is closed or a write fails.
func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				log.Printf("ws: write failed: %v", err)
				c.Close(websocket.StatusAbnormalClosure, "write failed")
				return
			}
		}
	}
}
