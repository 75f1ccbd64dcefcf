package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/app/route"
	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	router     *route.Router
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(router *route.Router, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{router: router, readLimit: readLimit, pingPeriod: pingPeriod}
}

// Handle upgrades an authenticated request and runs the connection
// until the transport closes, gracefully or not. The disconnect
// transition runs in both cases.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context, profile domain.Profile) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	wc := newWsConn(conn)
	sess := core.NewSession(core.ConnID(uuid.NewString()), profile, wc)
	log.Info().Str("module", "ws").Str("conn", string(sess.ID)).Str("user", string(profile.ID)).Msg("new connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.router.Connect(ctx, sess)

	go ctl.writePump(ctx, wc)
	ctl.readPump(ctx, sess, wc)

	cancel()
	ctl.router.Disconnect(context.WithoutCancel(ctx), sess)
}

func (ctl *Controller) readPump(ctx context.Context, sess *core.Session, c *wsConn) {
	defer c.Close()

	pongWait := 2 * ctl.pingPeriod
	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("module", "ws").Str("conn", string(sess.ID)).Msg("read error")
			}
			return
		}
		ctl.router.HandleFrame(ctx, sess, data)
	}
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "ws").Msg("write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
