package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MG_SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "membergate", cfg.App.Name)
	require.Equal(t, "development", cfg.App.Env)
	require.Equal(t, 3333, cfg.App.Port)

	require.Equal(t, "mg_session", cfg.Session.CookieName)
	require.Equal(t, 168*time.Hour, cfg.Session.MaxAge)

	require.Equal(t, 12, cfg.Password.BcryptCost)
	require.False(t, cfg.Password.StrictRules)

	require.True(t, cfg.Postgres.Migrate)
	require.Equal(t, "disable", cfg.Postgres.SSLMode)

	require.Equal(t, time.Minute, cfg.RateLimit.WindowDuration)
	require.Equal(t, 5, cfg.RateLimit.LoginMaxAttempts)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MG_SESSION_SECRET", "test-secret")
	t.Setenv("MG_APP_ENV", "production")
	t.Setenv("MG_APP_PORT", "8080")
	t.Setenv("MG_POSTGRES_MIGRATE", "false")
	t.Setenv("MG_PASSWORD_STRICT_RULES", "true")
	t.Setenv("MG_SESSION_MAX_AGE", "24h")
	t.Setenv("MG_RATE_LIMIT_LOGIN_MAX_ATTEMPTS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "production", cfg.App.Env)
	require.Equal(t, 8080, cfg.App.Port)
	require.False(t, cfg.Postgres.Migrate)
	require.True(t, cfg.Password.StrictRules)
	require.Equal(t, 24*time.Hour, cfg.Session.MaxAge)
	require.Equal(t, 10, cfg.RateLimit.LoginMaxAttempts)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("MG_SESSION_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
}
