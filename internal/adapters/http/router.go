package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/adapters/signal"
	"github.com/dkeye/Hearings/internal/config"
	"github.com/dkeye/Hearings/internal/metric"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires the hub websocket, the operator API, health and
// metrics. A nil ctrl, api or gatherer leaves the matching routes out.
func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.HubWSController, api *API, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	secret := cfg.Secret
	if secret == "" {
		log.Warn().Str("module", "adapters.http").Msg("no session secret configured, sessions will not survive a restart")
		secret = uuid.NewString()
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("HearingsSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = metric.DefaultMetricsPath
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	apiGroup := r.Group("/api")
	apiGroup.POST("/session", handleLogin)
	apiGroup.DELETE("/session", handleLogout)

	authed := apiGroup.Group("", requireUser())
	if ctrl != nil {
		authed.GET("/ws/hub", func(c *gin.Context) {
			username := c.GetString(sessionUserKey)
			log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Str("user", username).Msg("ws hub endpoint hit")
			ctrl.HandleSignal(ctx, c, username)
		})
	}

	if api != nil {
		ops := authed.Group("", api.requireOperator())

		conferences := ops.Group("/conferences/:id")
		conferences.GET("", api.getConference)
		conferences.DELETE("", api.removeConference)
		conferences.POST("/refresh", api.refreshConference)
		conferences.GET("/hosts", api.getHosts)
		conferences.PUT("/participants/:participantID/status", api.updateParticipantStatus)
		conferences.GET("/videocontrol", api.getVideoControl)
		conferences.PUT("/videocontrol/:participantID", api.updateVideoControl)
		conferences.POST("/consultations", api.startConsultation)

		consultations := ops.Group("/consultations/:invitationID")
		consultations.GET("", api.getInvitation)
		consultations.PUT("/answers/:participantID", api.answerInvitation)
	}

	return r
}
