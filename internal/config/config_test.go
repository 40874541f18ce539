package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "session-layer", cfg.Coordinator.AppName)
	assert.Equal(t, "console", cfg.Coordinator.Scope)
	assert.Equal(t, 30*time.Second, cfg.Coordinator.RequestTimeout())
	assert.Equal(t, time.Second, cfg.Coordinator.ReconnectBaseDelay())
	assert.Equal(t, 5, cfg.Coordinator.ReconnectMaxAttempts)
	assert.Equal(t, ":8090", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
coordinator:
  url: wss://clearnode.example.org/ws
  app_name: sweeper
  request_timeout_seconds: 10
http:
  addr: ":9010"
log:
  level: debug
  pretty: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://clearnode.example.org/ws", cfg.Coordinator.URL)
	assert.Equal(t, "sweeper", cfg.Coordinator.AppName)
	assert.Equal(t, 10*time.Second, cfg.Coordinator.RequestTimeout())
	// Fields the file does not set keep their defaults.
	assert.Equal(t, "console", cfg.Coordinator.Scope)
	assert.Equal(t, 5, cfg.Coordinator.ReconnectMaxAttempts)
	assert.Equal(t, ":9010", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
coordinator:
  url: wss://file.example.org/ws
`)
	t.Setenv("COORDINATOR_URL", "wss://env.example.org/ws")
	t.Setenv("COORDINATOR_PRIVATE_KEY", "0x01")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RECONNECT_MAX_ATTEMPTS", "9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://env.example.org/ws", cfg.Coordinator.URL)
	assert.Equal(t, "0x01", cfg.Coordinator.PrivateKey)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9, cfg.Coordinator.ReconnectMaxAttempts)
}

func TestLoad_MissingURL(t *testing.T) {
	t.Setenv("COORDINATOR_URL", "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coordinator.url")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "coordinator: [not a map")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("COORDINATOR_URL", "wss://env.example.org/ws")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "wss://env.example.org/ws", cfg.Coordinator.URL)
}
