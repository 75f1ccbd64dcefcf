package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/adapters/poll"
	"github.com/ledyaev/amity/internal/adapters/ws"
	"github.com/ledyaev/amity/internal/app"
	"github.com/ledyaev/amity/internal/app/route"
	"github.com/ledyaev/amity/internal/auth"
	"github.com/ledyaev/amity/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, verifier *auth.Verifier, router *route.Router, presence *app.Presence) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("amity_session", store))

	started := time.Now()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).String(),
			"online": len(presence.ListOnline()),
		})
	})

	wsCtl := ws.NewController(router, cfg.ReadLimit, cfg.PingPeriod)
	pollCtl := poll.NewController(router, cfg.PollWait, cfg.PollTTL)
	go pollCtl.Run(ctx)

	authed := r.Group("", AuthRequired(verifier))

	authed.GET("/ws", func(c *gin.Context) {
		profile, ok := Identity(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		wsCtl.Handle(ctx, c, profile)
	})

	authed.POST("/poll/connect", func(c *gin.Context) {
		profile, ok := Identity(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		pollCtl.Connect(ctx, c, profile)
	})
	authed.GET("/poll/events", pollCtl.Events)
	authed.POST("/poll/emit", func(c *gin.Context) { pollCtl.Emit(ctx, c) })
	authed.POST("/poll/disconnect", func(c *gin.Context) { pollCtl.Disconnect(ctx, c) })

	api := authed.Group("/api")
	api.GET("/online", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": presence.ListOnline()})
	})

	log.Info().Str("module", "httpapi").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
