package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "USD", cfg.Currency)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 90, cfg.Scheduler.LookbackDays)
	assert.Empty(t, cfg.Gemini.APIKey, "missing API key must not be an error")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DB", "finpulse-test")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "key-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "finpulse-test", cfg.Database.Database)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "key-123", cfg.Gemini.APIKey)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "finpulse", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=finpulse sslmode=disable", db.DSN())
}
