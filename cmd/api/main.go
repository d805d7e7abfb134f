package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hotel/internal/config"
	"hotel/internal/database"
	"hotel/internal/notification"
	"hotel/internal/pkg/logger"
	"hotel/internal/repository"
	"hotel/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.AppEnv, cfg.LogLevel)
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.WithError(err).Fatal("db connect failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		lg.WithError(err).Fatal("auto migrate failed")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = notification.NewRedisClient(cfg.RedisURL)
		if err != nil {
			lg.WithError(err).Fatal("redis config invalid")
		}
		defer rdb.Close()
	} else {
		lg.Info("REDIS_URL not set, notification de-duplication disabled")
	}

	srv := server.New(server.Deps{Config: cfg, DB: db, Log: lg, Redis: rdb})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		lg.WithField("port", cfg.Port).Info("hotel api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Error("http shutdown")
	}
	// let in-flight notifications finish
	srv.Dispatcher.Wait()
}
