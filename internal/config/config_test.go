package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("STUDYFOCUS_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 3000, cfg.Planner.MaxTokens)
	assert.Equal(t, "env-key", cfg.Planner.APIKey)
	assert.Empty(t, cfg.DBPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MY_PLANNER_KEY", "secret")
	path := writeConfig(t, `
log_level: debug
tick_interval_ms: 250
db_path: /tmp/focus.db
planner:
  base_url: http://localhost:11434/v1
  model: llama3
  api_key_env: MY_PLANNER_KEY
  max_tokens: 1200
  temperature: 0.2
  timeout_seconds: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "/tmp/focus.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Planner.BaseURL)
	assert.Equal(t, "llama3", cfg.Planner.Model)
	assert.Equal(t, "secret", cfg.Planner.APIKey)
	assert.Equal(t, 1200, cfg.Planner.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Planner.Temperature, 1e-6)
	assert.Equal(t, 15*time.Second, cfg.Planner.Timeout)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	path := writeConfig(t, `
tick_interval_ms: 1
planner:
  max_tokens: -5
  temperature: 9
  timeout_seconds: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.TickInterval, cfg.TickInterval)
	assert.Equal(t, def.Planner.MaxTokens, cfg.Planner.MaxTokens)
	assert.Equal(t, def.Planner.Temperature, cfg.Planner.Temperature)
	assert.Equal(t, def.Planner.Timeout, cfg.Planner.Timeout)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "log_level: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("OTHER_KEY", "k2")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.TickInterval = 200 * time.Millisecond
	cfg.Planner.Model = "gpt-4o"
	cfg.Planner.APIKey = "must-not-be-written"
	require.NoError(t, Save(path, cfg, "OTHER_KEY"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "must-not-be-written")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", got.LogLevel)
	assert.Equal(t, 200*time.Millisecond, got.TickInterval)
	assert.Equal(t, "gpt-4o", got.Planner.Model)
	assert.Equal(t, "k2", got.Planner.APIKey)
}
