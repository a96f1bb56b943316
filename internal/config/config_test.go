package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"TOOLSHED_API_URL", "TOOLSHED_DB", "TOOLSHED_ADDR", "TOOLSHED_LOG",
		"TOOLSHED_SEND_RETURN_METADATA", "TOOLSHED_REFRESH", "TOOLSHED_NOTIFY_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIURL)
	assert.Equal(t, "toolshed.sqlite3", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
	assert.False(t, cfg.SendReturnMetadata)
	assert.Equal(t, "@every 1m", cfg.RefreshSpec)
	assert.Equal(t, 6*time.Second, cfg.NotificationTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOOLSHED_API_URL", "https://tools.example.org/api/v1/")
	t.Setenv("TOOLSHED_ADDR", "8081")
	t.Setenv("TOOLSHED_SEND_RETURN_METADATA", "true")
	t.Setenv("TOOLSHED_NOTIFY_TTL", "10s")

	cfg := Load()
	assert.Equal(t, "https://tools.example.org/api/v1", cfg.APIURL)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.True(t, cfg.SendReturnMetadata)
	assert.Equal(t, 10*time.Second, cfg.NotificationTTL)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOOLSHED_SEND_RETURN_METADATA", "maybe")
	t.Setenv("TOOLSHED_NOTIFY_TTL", "-1s")

	cfg := Load()
	assert.False(t, cfg.SendReturnMetadata)
	assert.Equal(t, 6*time.Second, cfg.NotificationTTL)
}

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr("8080"))
	assert.Equal(t, ":8080", normalizeAddr(":8080"))
	assert.Equal(t, "localhost:8080", normalizeAddr("localhost:8080"))
	assert.Equal(t, "[::1]:8080", normalizeAddr("[::1]:8080"))
	assert.Equal(t, "", normalizeAddr(""))
}
