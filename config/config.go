package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	BackendURL     string
	BackendTimeout time.Duration

	DBDriver    string
	DatabaseURL string

	JWTSecret     string
	SessionSecret string
	SessionTTL    time.Duration

	SessionCacheSize     int
	SessionCacheTTL      time.Duration
	SessionSweepSchedule string

	CloudinaryURL string
}

// Load reads the configuration from the environment. godotenv has already
// populated it from .env when one exists.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		BackendURL:           firstEnv("http://localhost:3000", "BACKEND_URL", "VITE_BACKEND_URL"),
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		CloudinaryURL:        os.Getenv("CLOUDINARY_URL"),
	}

	var err error
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionCacheTTL, err = getDuration("SESSION_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionCacheSize, err = getInt("SESSION_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.SessionSecret == "" {
		logrus.Warn("SESSION_SECRET not set, sealing backend tokens with JWT_SECRET")
		cfg.SessionSecret = cfg.JWTSecret
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "studio.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
