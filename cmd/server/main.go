package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gracechapel/scripture-assistant/internal/ai/completion"
	"github.com/gracechapel/scripture-assistant/internal/api"
	"github.com/gracechapel/scripture-assistant/internal/config"
	"github.com/gracechapel/scripture-assistant/internal/service"
	"github.com/gracechapel/scripture-assistant/internal/storage"
	"github.com/gracechapel/scripture-assistant/internal/storage/memory"
	"github.com/gracechapel/scripture-assistant/internal/storage/postgres"
	"github.com/gracechapel/scripture-assistant/internal/storage/redis"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Configure log format
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	logger.Info("starting scripture-assistant server")

	// Initialize the slot store
	ctx := context.Background()
	var store storage.Store
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.Store.DatabaseDSN)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer pg.Close()
		store = pg
	case "redis":
		rd, err := redis.New(cfg.Store.RedisURI)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer rd.Close()
		store = rd
	default:
		logger.Warn("using in-memory store, state is lost on restart")
		store = memory.New()
	}

	// Initialize the completion client
	completer := completion.NewClient(cfg.Completion.Endpoint, cfg.Completion.APIKey)

	// Initialize services
	authService := service.NewAuthService(cfg.Server.JWTSecret, cfg.Server.AccessPassword)

	// Initialize API server
	server := api.NewServer(authService, store, completer, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Add middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Info("request")
			return nil
		},
	}))

	// Health check endpoint (public)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	// Shared-password login (public)
	e.POST("/auth/login", server.Login)

	// Assistant routes (authenticated)
	assistant := e.Group("/assistant", server.AuthMiddleware)
	assistant.GET("/modes", server.ListModes)
	assistant.POST("/mode", server.SetMode)
	assistant.POST("/messages", server.SendMessage)
	assistant.GET("/conversations", server.ListConversations)
	assistant.POST("/conversations", server.CreateConversation)
	assistant.POST("/conversations/:id", server.LoadConversation)
	assistant.DELETE("/conversations/:id", server.DeleteConversation)
	assistant.POST("/chat/clear", server.ClearChat)
	assistant.GET("/favorites", server.ListFavorites)
	assistant.POST("/favorites/toggle", server.ToggleFavorite)
	assistant.POST("/render", server.Render)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}

	logger.Info("server stopped")
}
