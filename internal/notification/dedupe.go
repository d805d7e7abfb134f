package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	}), nil
}

// RedisDeduper drops repeated deliveries of the same event kind for a booking.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl, log: log}
}

func dedupeKey(ev domain.BookingEvent) string {
	return fmt.Sprintf("notify:%s:%d", ev.Kind, ev.Booking.ID)
}

// FirstDelivery fails open: when redis is unreachable the event is delivered.
func (d *RedisDeduper) FirstDelivery(ctx context.Context, ev domain.BookingEvent) bool {
	ok, err := d.client.SetNX(ctx, dedupeKey(ev), 1, d.ttl).Result()
	if err != nil {
		d.log.WithError(err).Warn("notification dedupe unavailable")
		return true
	}
	return ok
}
