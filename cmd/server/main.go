package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/vidshare-backend/internal/api"
	"github.com/dom/vidshare-backend/internal/auth"
	"github.com/dom/vidshare-backend/internal/config"
	"github.com/dom/vidshare-backend/internal/logging"
	"github.com/dom/vidshare-backend/internal/media"
	"github.com/dom/vidshare-backend/internal/repository/postgres"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, logging.GormLevel(cfg.Environment))
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db)

	tokens := auth.NewTokenService(auth.TokenConfigFrom(cfg))

	var rotation auth.RotationStrategy = auth.SingleSlotRotation{}
	var rdb *redis.Client
	if cfg.RefreshRotation == config.RotationRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		rotation = auth.NewRedisReuseDetector(rdb, auth.SingleSlotRotation{})
		logger.Info("refresh token reuse detection enabled", "addr", cfg.RedisAddr)
	}

	store, err := media.NewS3Store(context.Background(), media.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.MediaPublicBaseURL,
	}, logging.WithComponent(logger, "media"))
	if err != nil {
		logger.Error("failed to configure media store", "error", err)
		os.Exit(1)
	}
	reaper := media.NewAsyncReaper(store, cfg.MediaDeleteTimeout, logging.WithComponent(logger, "reaper"))

	services := service.NewServices(repos, service.Dependencies{
		Tokens:   tokens,
		Rotation: rotation,
		Media:    store,
		Reaper:   reaper,
		Logger:   logger,
	})

	router := api.NewRouter(services, cfg, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight media deletions finish before the process exits.
	reaper.Wait()

	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server stopped")
}
