package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// wsConn wraps a websocket connection with a write lock. Frames are written
// from the connection's own read loop (mailbox flush, forwarded signals) and
// from gateway HTTP handlers, and gorilla/websocket permits only one
// concurrent writer.
type wsConn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.ws.WriteJSON(v)
}

// open reports whether the channel is still usable for delivery.
func (c *wsConn) open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *wsConn) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.ws.Close()
	}
	c.mu.Unlock()
}
