package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JoshuaAmmons/econ-games/internal/config"
	"github.com/JoshuaAmmons/econ-games/internal/db"
	_ "github.com/JoshuaAmmons/econ-games/internal/games"
	httpServer "github.com/JoshuaAmmons/econ-games/internal/http"
	"github.com/JoshuaAmmons/econ-games/internal/http/middleware"
	"github.com/JoshuaAmmons/econ-games/internal/logger"
	"github.com/JoshuaAmmons/econ-games/internal/repository"
	"github.com/JoshuaAmmons/econ-games/internal/service"
	"github.com/JoshuaAmmons/econ-games/internal/ws"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	hub := ws.NewHub()
	sessions := service.NewSessionService(
		repository.NewSessionRepository(dbPool),
		repository.NewRoundRepository(dbPool),
		repository.NewPlayerRepository(dbPool),
		repository.NewSubmissionRepository(dbPool),
		repository.NewOutcomeRepository(dbPool),
		hub,
	)

	r := gin.Default()

	// CORS for the console and player frontends.
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	httpServer.RegisterRoutes(r, dbPool, sessions, hub, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
