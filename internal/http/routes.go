package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JoshuaAmmons/econ-games/internal/config"
	"github.com/JoshuaAmmons/econ-games/internal/http/handlers"
	"github.com/JoshuaAmmons/econ-games/internal/http/middleware"
	"github.com/JoshuaAmmons/econ-games/internal/service"
	"github.com/JoshuaAmmons/econ-games/internal/ws"
)

// RegisterRoutes wires the REST surface, the websocket endpoint and the
// operational probes onto the router.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, sessions *service.SessionService, hub *ws.Hub, cfg *config.Config, version string) {
	h := handlers.NewHandler(sessions, cfg.AdminToken)
	healthHandler := handlers.NewHealthHandler(db, version)

	r.Use(middleware.Metrics())

	// Probes and metrics, never rate limited.
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiWindow := time.Duration(cfg.APIRateWindowSeconds) * time.Second

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiWindow))
	{
		v1.POST("/auth/admin", middleware.RedisRateLimit(cfg.JoinRateLimit, apiWindow), h.AdminAuth)
		v1.POST("/join", middleware.RedisRateLimit(cfg.JoinRateLimit, apiWindow), h.Join)

		v1.GET("/game-types", h.GameTypes)
		v1.GET("/state", middleware.PlayerAuth(), h.State)

		admin := v1.Group("/sessions")
		admin.Use(middleware.AdminAuth())
		{
			admin.POST("", h.CreateSession)
			admin.GET("", h.ListSessions)
			admin.GET("/:id", h.GetSession)
			admin.DELETE("/:id", h.DeleteSession)
			admin.POST("/:id/start", h.StartSession)
			admin.POST("/:id/end-round", h.EndRound)
			admin.POST("/:id/end", h.EndSession)
			admin.GET("/:id/export", h.ExportCSV)
		}
	}

	// Player action transport.
	r.GET("/ws", ws.HandleWS(hub, sessions))
}
