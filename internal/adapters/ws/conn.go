// Package ws is the streaming transport adapter: it upgrades
// authenticated HTTP requests, owns the socket lifecycle and feeds
// frames into the event router.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ledyaev/amity/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// wsConn implements core.SignalConnection over a websocket with a
// bounded outbound queue. A full queue drops the frame rather than
// blocking the router.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn, send: make(chan core.Frame, 64)}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
