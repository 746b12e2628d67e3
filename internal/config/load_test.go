package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch_test")
	t.Setenv("DISPATCH_AUTH_JWT_SECRET", "test-secret-key-thats-at-least-32-chars")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/dispatch_test", cfg.Database.URL)
	assert.Equal(t, "test-secret-key-thats-at-least-32-chars", cfg.Auth.JWTSecret)

	// Defaults fill in everything not set explicitly
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
}

func TestLoadEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch_test")
	t.Setenv("DISPATCH_AUTH_JWT_SECRET", "test-secret-key-thats-at-least-32-chars")
	t.Setenv("DISPATCH_SERVER_PORT", "9999")
	t.Setenv("DISPATCH_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "")
	t.Setenv("DISPATCH_AUTH_JWT_SECRET", "test-secret-key-thats-at-least-32-chars")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch_test")
	t.Setenv("DISPATCH_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	assert.Error(t, err)
}
