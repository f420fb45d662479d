// Package http wires the gin router: the signaling WebSocket endpoint, the
// transcript/summary REST surface, ICE configuration, and operational
// endpoints.
package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/adapters/signal"
	"github.com/openhuddle/huddle/internal/config"
	"github.com/openhuddle/huddle/internal/observability"
	"github.com/openhuddle/huddle/internal/storage"
	"github.com/openhuddle/huddle/internal/summarize"
)

// ClientTokenMiddleware gives every visitor a stable client token, used as
// the fallback signaling id when the ws path omits one.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get("ct").(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set("ct", token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, store *storage.TranscriptStore, provider summarize.Provider) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetrics())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	store2 := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSessions", store2))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	api := &API{cfg: cfg, store: store, provider: provider}

	r.GET("/config", api.ICEConfig)
	r.GET("/health", api.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/transcripts", api.CreateTranscript)
	r.GET("/transcripts", api.ListTranscripts)

	r.POST("/summaries/room/:room", api.SummarizeRoom)
	r.POST("/summaries/room/:room/pdf", api.SummarizeRoomPDF)

	wsHandler := func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	}
	r.GET("/ws/:room", wsHandler)
	r.GET("/ws/:room/:client_id", wsHandler)

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}
