package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"hotel/internal/domain"
)

const (
	defaultPort               = "8080"
	defaultDatabaseURL        = "hotel.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultJWTTTL             = "24h"
	defaultStoreTimeout       = "5s"
	defaultGuestInitialStatus = "confirmed"
	defaultStaffInitialStatus = "confirmed"
	defaultNotifyAsync        = "true"
	defaultNotifyTimeout      = "10s"
	defaultNotifyRetention    = "720h"
	defaultNotifyDedupeTTL    = "24h"
	defaultSMTPFromName       = "Hotel Management"
	defaultLogLevel           = "info"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	LogLevel    string

	JWTSecret string
	JWTTTL    time.Duration

	// StoreTimeout bounds every booking operation's storage work.
	StoreTimeout time.Duration

	GuestInitialStatus domain.BookingStatus
	StaffInitialStatus domain.BookingStatus

	NotifyAsync     bool
	NotifyTimeout   time.Duration
	NotifyRetention time.Duration
	NotifyDedupeTTL time.Duration

	RedisURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFromName string

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = parseDurationEnv("STORE_TIMEOUT", defaultStoreTimeout); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = parseDurationEnv("NOTIFY_TIMEOUT", defaultNotifyTimeout); err != nil {
		return nil, err
	}
	if cfg.NotifyRetention, err = parseDurationEnv("NOTIFY_RETENTION", defaultNotifyRetention); err != nil {
		return nil, err
	}
	if cfg.NotifyDedupeTTL, err = parseDurationEnv("NOTIFY_DEDUPE_TTL", defaultNotifyDedupeTTL); err != nil {
		return nil, err
	}

	cfg.GuestInitialStatus = domain.BookingStatus(strings.ToLower(strings.TrimSpace(getEnv("BOOKING_GUEST_INITIAL_STATUS", defaultGuestInitialStatus))))
	cfg.StaffInitialStatus = domain.BookingStatus(strings.ToLower(strings.TrimSpace(getEnv("BOOKING_STAFF_INITIAL_STATUS", defaultStaffInitialStatus))))

	cfg.NotifyAsync = parseBoolEnv("NOTIFY_ASYNC", defaultNotifyAsync)
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = strings.TrimSpace(os.Getenv("SMTP_PORT"))
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFromName = strings.TrimSpace(getEnv("SMTP_FROM_NAME", defaultSMTPFromName))

	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SMTPConfigured reports whether real mail delivery is possible.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be > 0")
	}
	if cfg.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.NotifyRetention <= 0 {
		return fmt.Errorf("NOTIFY_RETENTION must be > 0")
	}
	if cfg.NotifyDedupeTTL <= 0 {
		return fmt.Errorf("NOTIFY_DEDUPE_TTL must be > 0")
	}
	if !isInitialStatus(cfg.GuestInitialStatus) {
		return fmt.Errorf("BOOKING_GUEST_INITIAL_STATUS must be one of: pending, confirmed")
	}
	if !isInitialStatus(cfg.StaffInitialStatus) {
		return fmt.Errorf("BOOKING_STAFF_INITIAL_STATUS must be one of: pending, confirmed")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isInitialStatus(s domain.BookingStatus) bool {
	return s == domain.BookingPending || s == domain.BookingConfirmed
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
