package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	EnvAddr, EnvDB, EnvJWTSecret, EnvTokenTTL, EnvLog, EnvLogLevel, EnvCheckoutRetries,
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "trznica.sqlite3", cfg.DB)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 3, cfg.CheckoutRetries)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9000")
	t.Setenv(EnvDB, "postgres://trznica@localhost/trznica")
	t.Setenv(EnvJWTSecret, "s3cret")
	t.Setenv(EnvTokenTTL, "2h")
	t.Setenv(EnvLog, "/var/log/trznica.log")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvCheckoutRetries, "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://trznica@localhost/trznica", cfg.DB)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "/var/log/trznica.log", cfg.LogPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.CheckoutRetries)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "from-env.sqlite3")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		EnvAddr+"=:7070\n"+EnvDB+"=from-file.sqlite3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "from-env.sqlite3", cfg.DB, "environment wins over .env")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvTokenTTL, "week"},
		{EnvTokenTTL, "-1h"},
		{EnvLogLevel, "loud"},
		{EnvCheckoutRetries, "many"},
		{EnvCheckoutRetries, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}
