// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/ai"
	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/database"
	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/router"
	"github.com/javajoker/barter-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Initialize persistence
	var st store.Store
	switch cfg.Database.Driver {
	case "memory":
		logrus.Warn("Using in-memory store; data is lost on restart")
		st = store.NewMemoryStore()
	default:
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
		st = store.NewGormStore(db)
	}

	// Redis is optional: it fans changes out across instances and keeps
	// revoked tokens shared.
	var (
		broker  livequery.Broker
		revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
	)
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to redis")
		}
		broker = livequery.NewRedisBroker(client, cfg.Redis.Channel)
		revoker = store.NewRedisTokenRevoker(client)
		logrus.WithField("addr", cfg.Redis.Addr()).Info("Redis connected")
	}

	var generator ai.TextGenerator = ai.Disabled{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model,
			ai.WithBaseURL(cfg.Gemini.BaseURL),
			ai.WithTimeout(time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second),
		)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to configure Gemini")
		}
		generator = gemini
	} else {
		logrus.Warn("GEMINI_API_KEY not set; advisor answers will use fallbacks")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := livequery.NewHub(broker)
	go hub.Run(hubCtx)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, stopRouter, err := router.Initialize(router.Deps{
		Config:    cfg,
		Store:     st,
		Hub:       hub,
		Revoker:   revoker,
		Generator: generator,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize router")
	}
	defer stopRouter()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
