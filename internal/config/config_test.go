package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base() map[string]any {
	return map[string]any{
		"HTTP_PORT":          "8080",
		"JWT_ACCESS_SECRET":  "a",
		"JWT_REFRESH_SECRET": "r",
	}
}

func TestFromViperDefaults(t *testing.T) {
	v := Defaults()
	for k, val := range base() {
		v.Set(k, val)
	}

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "learnmap", cfg.App.AppName)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "learnmap.db", cfg.Database.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.Database.StorageTimeout)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 600*time.Second, cfg.Redis.TTL)
	assert.Empty(t, cfg.LLM.Provider)
}

func TestFromViperReportsAllMissingKeys(t *testing.T) {
	v := Defaults()
	v.Set("DB_DRIVER", "postgres")

	_, err := FromViper(v)
	require.ErrorIs(t, err, errMissingRequiredEnv)
	for _, key := range []string{"HTTP_PORT", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "DB_HOST", "DB_NAME", "DB_USER"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestFromViperProviderNeedsKey(t *testing.T) {
	v := Defaults()
	for k, val := range base() {
		v.Set(k, val)
	}
	v.Set("LLM_PROVIDER", "Anthropic")

	_, err := FromViper(v)
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	v.Set("ANTHROPIC_API_KEY", "sk-test")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	v := Defaults()
	v.Set("DB_DRIVER", "mysql")
	_, err := FromViper(v)
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	v = Defaults()
	v.Set("LLM_PROVIDER", "cohere")
	_, err = FromViper(v)
	assert.ErrorContains(t, err, "unsupported LLM_PROVIDER")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("STORAGE_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, 2*time.Second, cfg.Database.StorageTimeout)
}
