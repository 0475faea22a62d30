// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port             string
	FrontendURL      string
	DBPath           string
	LogLevel         slog.Level
	AdvanceDelay     time.Duration
	SessionTTL       time.Duration
	AttemptRetention time.Duration
	VerifyChallenges bool
	DBRetry          RetryConfig
}

// RetryConfig controls SQLite write retries on lock contention.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	frontendURL := getEnv("FRONTEND_URL", "")

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		FrontendURL:      frontendURL,
		DBPath:           getEnv("DB_PATH", "./data/labs.db"),
		LogLevel:         getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		AdvanceDelay:     getEnvDuration("ADVANCE_DELAY", 1200*time.Millisecond),
		SessionTTL:       getEnvDuration("SESSION_TTL", 60*time.Minute),
		AttemptRetention: getEnvDuration("ATTEMPT_RETENTION", 30*24*time.Hour),
		VerifyChallenges: getEnvBool("VERIFY_CHALLENGES", isDevelopmentURL(frontendURL)),
		DBRetry: RetryConfig{
			MaxRetries: getEnvInt("DB_MAX_RETRIES", 3),
			BaseDelay:  getEnvDuration("DB_RETRY_BASE_DELAY", 50*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.AdvanceDelay < 0 {
		return fmt.Errorf("ADVANCE_DELAY must be >= 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.AttemptRetention <= 0 {
		return fmt.Errorf("ATTEMPT_RETENTION must be > 0")
	}
	if c.DBRetry.MaxRetries < 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be >= 0")
	}
	if c.DBRetry.BaseDelay <= 0 {
		return fmt.Errorf("DB_RETRY_BASE_DELAY must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return isDevelopmentURL(c.FrontendURL)
}

func isDevelopmentURL(u string) bool {
	return u == "" ||
		strings.Contains(u, "localhost") ||
		strings.Contains(u, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
