package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigSetup(t *testing.T) {
	cfg := (&Config{Port: "not-a-port", Password: "secret"}).Setup()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "dashboard", cfg.DBName)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Contains(t, cfg.DSN(), "password=secret")
	assert.NotContains(t, cfg.String(), "secret")
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_DB_NAME", "coins")

	cfg := NewConfigFromEnv().Setup()
	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, "6543", cfg.Port)
	assert.Equal(t, "coins", cfg.DBName)
	assert.Equal(t, "postgres", cfg.Username)
}
