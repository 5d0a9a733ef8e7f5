package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER",
		"MF_API_BASE_URL", "CACHE_TTL_SECONDS", "UPSTREAM_COALESCE",
		"COMPARE_ALLOW_PARTIAL", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/mf")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "https://api.mfapi.in", cfg.UpstreamBaseURL)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.CoalesceUpstream)
	assert.False(t, cfg.CompareAllowPartial)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "mf-tracker-backend", cfg.JWTIssuer)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "4000")
	t.Setenv("CACHE_TTL_SECONDS", "90")
	t.Setenv("UPSTREAM_COALESCE", "true")
	t.Setenv("COMPARE_ALLOW_PARTIAL", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, ":4000", cfg.HTTPAddress())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.CoalesceUpstream)
	assert.True(t, cfg.CompareAllowPartial)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CACHE_TTL_SECONDS", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("JWT_SECRET", "s")
	_, err = Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")

	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
