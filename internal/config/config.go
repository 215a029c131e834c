// Package config loads service settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr            = "TRZNICA_ADDR"
	EnvDB              = "TRZNICA_DB"
	EnvJWTSecret       = "TRZNICA_JWT_SECRET"
	EnvTokenTTL        = "TRZNICA_TOKEN_TTL"
	EnvLog             = "TRZNICA_LOG"
	EnvLogLevel        = "TRZNICA_LOG_LEVEL"
	EnvCheckoutRetries = "TRZNICA_CHECKOUT_RETRIES"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr string
	// DB is a SQLite path or a postgres:// URL.
	DB string
	// JWTSecret is optional; an empty secret is generated once and stored in
	// the database.
	JWTSecret       string
	TokenTTL        time.Duration
	LogPath         string
	LogLevel        slog.Level
	CheckoutRetries int
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DB:              "trznica.sqlite3",
		TokenTTL:        7 * 24 * time.Hour,
		LogLevel:        slog.LevelInfo,
		CheckoutRetries: 3,
	}
}

// Load reads the given .env files (missing ones are skipped) and then the
// environment. Variables already set in the environment win over .env files.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Default()
	cfg.Addr = getEnv(EnvAddr, cfg.Addr)
	cfg.DB = getEnv(EnvDB, cfg.DB)
	cfg.JWTSecret = getEnv(EnvJWTSecret, "")
	cfg.LogPath = getEnv(EnvLog, "")

	if v := getEnv(EnvTokenTTL, ""); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTokenTTL, err)
		}
		cfg.TokenTTL = ttl
	}

	if v := getEnv(EnvLogLevel, ""); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v := getEnv(EnvCheckoutRetries, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvCheckoutRetries, err)
		}
		cfg.CheckoutRetries = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("listen address must not be empty")
	case c.DB == "":
		return errors.New("database must not be empty")
	case c.TokenTTL <= 0:
		return errors.New("token TTL must be positive")
	case c.CheckoutRetries < 1:
		return errors.New("checkout retries must be at least 1")
	}
	return nil
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
