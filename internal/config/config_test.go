package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 10*time.Minute, cfg.HandoffTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.TokenSweepInterval)
	assert.Equal(t, "https://picsum.photos/seed/user/200/200", cfg.DefaultAvatarURL)
	assert.False(t, cfg.TelegramEnabled())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ARCADE_HTTP_PORT":      "9090",
		"ARCADE_STORAGE":        "sqlite",
		"ARCADE_SQLITE_PATH":    "/tmp/a.db",
		"ARCADE_HANDOFF_TTL":    "90s",
		"ARCADE_TELEGRAM_TOKEN": "123:abc",
		"ARCADE_LOG_LEVEL":      "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "/tmp/a.db", cfg.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.HandoffTokenTTL)
	assert.True(t, cfg.TelegramEnabled())
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"ARCADE_STORAGE": "mongo"}},
		{"postgres without dsn", map[string]string{"ARCADE_STORAGE": "postgres"}},
		{"bad port", map[string]string{"ARCADE_HTTP_PORT": "70000"}},
		{"zero ttl", map[string]string{"ARCADE_HANDOFF_TTL": "0s"}},
		{"bad log level", map[string]string{"ARCADE_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := LoadFrom(map[string]string{"ARCADE_HTTP_PORT": "eighty"})
	assert.Error(t, err)
}

func TestLoadReadsProcessEnv(t *testing.T) {
	t.Setenv("ARCADE_STORAGE", "redis")
	t.Setenv("ARCADE_REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}
