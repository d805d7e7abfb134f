package main

import (
	"context"
	"log"
	"time"

	"hotel/internal/config"
	"hotel/internal/database"
	"hotel/internal/pkg/logger"
	"hotel/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.WithError(err).Fatal("db connect failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-cfg.NotifyRetention)
	n, err := repository.NewNotificationLogRepository(db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		lg.WithError(err).Fatal("cleanup notification_logs failed")
	}
	lg.WithField("cutoff", cutoff.Format(time.RFC3339)).Infof("notification cleanup completed: notification_logs=%d", n)
}
