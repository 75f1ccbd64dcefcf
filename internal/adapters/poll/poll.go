// Package poll is the request/response fallback transport for clients
// that cannot hold a websocket. A cookie session pins the client to
// its server-side connection; outbound frames queue until the next
// long-poll drains them.
package poll

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/app/route"
	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

const sessionKey = "poll_conn"

// pollConn implements core.SignalConnection with a queue drained by
// long-poll requests instead of a socket write pump.
type pollConn struct {
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newPollConn() *pollConn {
	return &pollConn{send: make(chan core.Frame, 256)}
}

func (c *pollConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return errors.New("queue full")
	}
	return nil
}

func (c *pollConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

type entry struct {
	sess     *core.Session
	conn     *pollConn
	lastSeen time.Time
}

type Controller struct {
	router *route.Router
	wait   time.Duration
	ttl    time.Duration

	mu    sync.Mutex
	conns map[core.ConnID]*entry
}

func NewController(router *route.Router, wait, ttl time.Duration) *Controller {
	return &Controller{
		router: router,
		wait:   wait,
		ttl:    ttl,
		conns:  make(map[core.ConnID]*entry),
	}
}

// Run reaps idle polling connections; a client that stops polling for
// longer than the TTL goes through the same disconnect transition an
// abrupt socket failure would.
func (ctl *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(ctl.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ctl.reap(ctx)
		}
	}
}

func (ctl *Controller) reap(ctx context.Context) {
	cutoff := time.Now().Add(-ctl.ttl)
	var expired []*entry
	ctl.mu.Lock()
	for id, e := range ctl.conns {
		if e.lastSeen.Before(cutoff) {
			delete(ctl.conns, id)
			expired = append(expired, e)
		}
	}
	ctl.mu.Unlock()

	for _, e := range expired {
		log.Info().Str("module", "poll").Str("conn", string(e.sess.ID)).Msg("idle connection reaped")
		ctl.router.Disconnect(ctx, e.sess)
	}
}

// Connect admits the authenticated caller over the polling transport
// and binds the connection to the cookie session.
func (ctl *Controller) Connect(ctx context.Context, c *gin.Context, profile domain.Profile) {
	conn := newPollConn()
	sess := core.NewSession(core.ConnID(uuid.NewString()), profile, conn)

	ctl.mu.Lock()
	ctl.conns[sess.ID] = &entry{sess: sess, conn: conn, lastSeen: time.Now()}
	ctl.mu.Unlock()

	ctl.router.Connect(ctx, sess)

	store := sessions.Default(c)
	store.Set(sessionKey, string(sess.ID))
	if err := store.Save(); err != nil {
		log.Warn().Err(err).Str("module", "poll").Msg("session save failed")
	}
	c.JSON(http.StatusOK, gin.H{"connectionId": string(sess.ID)})
}

// Events drains queued frames, waiting up to the configured bound for
// the first one.
func (ctl *Controller) Events(c *gin.Context) {
	e, ok := ctl.lookup(c)
	if !ok {
		c.JSON(http.StatusGone, gin.H{"error": "not connected"})
		return
	}

	frames := make([]core.Frame, 0, 8)
	timer := time.NewTimer(ctl.wait)
	defer timer.Stop()

	select {
	case f, open := <-e.conn.send:
		if !open {
			c.JSON(http.StatusGone, gin.H{"error": "not connected"})
			return
		}
		frames = append(frames, f)
	case <-timer.C:
	case <-c.Request.Context().Done():
		return
	}

drain:
	for {
		select {
		case f, open := <-e.conn.send:
			if !open {
				break drain
			}
			frames = append(frames, f)
		default:
			break drain
		}
	}

	raw := make([]json.RawMessage, len(frames))
	for i, f := range frames {
		raw[i] = json.RawMessage(f)
	}
	c.JSON(http.StatusOK, gin.H{"events": raw})
}

// Emit injects one inbound event frame.
func (ctl *Controller) Emit(ctx context.Context, c *gin.Context) {
	e, ok := ctl.lookup(c)
	if !ok {
		c.JSON(http.StatusGone, gin.H{"error": "not connected"})
		return
	}
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}
	ctl.router.HandleFrame(ctx, e.sess, data)
	c.Status(http.StatusAccepted)
}

func (ctl *Controller) Disconnect(ctx context.Context, c *gin.Context) {
	e, ok := ctl.lookup(c)
	if !ok {
		c.JSON(http.StatusGone, gin.H{"error": "not connected"})
		return
	}
	ctl.mu.Lock()
	delete(ctl.conns, e.sess.ID)
	ctl.mu.Unlock()

	ctl.router.Disconnect(ctx, e.sess)

	store := sessions.Default(c)
	store.Delete(sessionKey)
	_ = store.Save()
	c.Status(http.StatusNoContent)
}

// lookup resolves the caller's connection from the cookie session and
// touches its idle timer.
func (ctl *Controller) lookup(c *gin.Context) (*entry, bool) {
	store := sessions.Default(c)
	id, ok := store.Get(sessionKey).(string)
	if !ok || id == "" {
		return nil, false
	}
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	e, ok := ctl.conns[core.ConnID(id)]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e, true
}
