// Package config loads process-wide settings from the environment.
// Values are read once at startup and treated as read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL is returned when DATABASE_URL is not set.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not defined in environment variables")

// Config holds everything the API server and the admin CLI need.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	FrontendURL string

	JWTSecret string
	TokenTTL  time.Duration

	StrictTransitions bool

	LogLevel  string
	LogFormat string

	Redis RedisConfig

	TelegramBotToken    string
	TelegramAdminChatID int64
	DefaultLanguage     string
}

// RedisConfig describes the optional Redis connection used for event fan-out.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// IsDevelopment reports whether the server runs in development mode, which
// unlocks error details in 500 responses and console logging.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// TelegramEnabled reports whether admin notifications should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramAdminChatID != 0
}

// LoadDotEnv loads a .env file if one exists. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads configuration from the environment. Precedence: explicit env var >
// .env file (if loaded by LoadDotEnv) > default.
func Load() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("APP_ENV", "production"),
		Port:            getEnv("PORT", "5000"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_SECRET is not defined in environment variables")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDevelopment() {
			cfg.LogFormat = "console"
		}
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.StrictTransitions, err = parseBool("STRICT_TRANSITIONS", false); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if raw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); raw != "" {
		if cfg.TelegramAdminChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID %q: %w", raw, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid boolean for %s: %q", key, raw)
	}
	return b, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid integer for %s: %q", key, raw)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return d, nil
}
