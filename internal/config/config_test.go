package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellanbot/castellan/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "12345678:test-token"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "castellan.db", cfg.Database.Path)
	assert.Equal(t, 30*24*time.Hour, cfg.Database.EventRetention)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.True(t, cfg.Web.Enabled)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Contains(t, cfg.Scheduler.Tasks, "events_prune")
	assert.Contains(t, cfg.Scheduler.Tasks, "store_health")
}

func TestLoadConfig_OverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: false
telegram:
  token: "12345678:test-token"
  audit_chat_id: -1001234
redis:
  url: "redis://localhost:6379/0"
database:
  path: /var/lib/castellan/events.db
  event_retention: 168h
store:
  timeout: 5s
web:
  enabled: false
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Logger.JSON)
	assert.Equal(t, int64(-1001234), cfg.Telegram.AuditChatID)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "/var/lib/castellan/events.db", cfg.Database.Path)
	assert.Equal(t, 7*24*time.Hour, cfg.Database.EventRetention)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.False(t, cfg.Web.Enabled)
}

func TestLoadConfig_MissingTokenFails(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: info
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidLevelFails(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: verbose
telegram:
  token: "12345678:test-token"
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "12345678:env-token")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "12345678:env-token", cfg.Telegram.Token)
	assert.Equal(t, "info", cfg.Logger.Level)
}
