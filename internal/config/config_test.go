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
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "")
	cfg, err := LoadConfig(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.Market.BaseURL)
	assert.Equal(t, "eur", cfg.Market.Currency)
	assert.Equal(t, 100, cfg.Market.PerPage)
	assert.Equal(t, 7, cfg.Market.HistoryDays)
	assert.Equal(t, 10*time.Second, cfg.Market.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Market.RefreshInterval)
	assert.Equal(t, File, cfg.Storage.Driver)
	assert.Equal(t, "./data", cfg.Storage.Dir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "demo-key")
	cfg, err := LoadConfig(writeConfig(t, `
server:
  port: "9090"
market:
  currency: " USD "
  per_page: 1000
  timeout: 3s
  refresh_interval: 2m
storage:
  driver: memory
`))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "usd", cfg.Market.Currency)
	assert.Equal(t, 250, cfg.Market.PerPage)
	assert.Equal(t, 3*time.Second, cfg.Market.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Market.RefreshInterval)
	assert.Equal(t, "demo-key", cfg.Market.APIKey)
	assert.Equal(t, Memory, cfg.Storage.Driver)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "storage:\n  driver: redis\n"))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = LoadConfig(writeConfig(t, "market:\n  base_url: ftp://example.com\n"))
	assert.ErrorContains(t, err, "must be http(s)")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Market.RequestsPerMinute)
}
