// Package http wires the REST surface and the websocket endpoint into a gin
// engine.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/adapters/signal"
	"github.com/huddlekit/huddle/internal/app"
	"github.com/huddlekit/huddle/internal/config"
	"github.com/huddlekit/huddle/internal/store"
)

// API carries the collaborators the handlers need.
type API struct {
	Cfg   *config.Config
	Hub   *app.Hub
	Users *store.Users
	Files *app.FileService
	Blobs *store.Blobs
}

const sessionIdentityKey = "identity_id"

func SetupRouter(ctx context.Context, api *API) *gin.Engine {
	cfg := api.Cfg
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSession", sessionStore))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	grp := r.Group("/api")

	grp.POST("/register", api.handleRegister)
	grp.POST("/login", api.handleLogin)
	grp.POST("/logout", api.handleLogout)
	grp.GET("/users/online", api.handleOnlineUsers)
	grp.GET("/files", api.handleListFiles)
	grp.POST("/files", api.handleUpload)
	grp.GET("/files/:id/download", api.handleDownload)
	grp.GET("/ice-config", api.handleICEConfig)

	ctl := signal.NewController(api.Hub, cfg)
	grp.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
