package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_defaults(t *testing.T) {
	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "dataprobe_meta.sqlite", cfg.MetaDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.Warnings, "missing JWT secret should warn")
}

func TestLoadFromEnv_overrides(t *testing.T) {
	t.Setenv("WAREHOUSE_PATH", "/data/lake.duckdb")
	t.Setenv("SUITE_PARALLELISM", "8")
	t.Setenv("QUERY_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "/data/lake.duckdb", cfg.WarehousePath)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, 2.5, cfg.QueryRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv_malformedNumbersWarn(t *testing.T) {
	t.Setenv("SUITE_PARALLELISM", "abc")
	t.Setenv("QUERY_RPS", "x")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Parallelism, "default applies when the value is unparsable")
	assert.Zero(t, cfg.QueryRPS)

	warnings := strings.Join(cfg.Warnings, "\n")
	assert.Contains(t, warnings, `SUITE_PARALLELISM="abc" is not an integer`)
	assert.Contains(t, warnings, `QUERY_RPS="x" is not a number`)
}

func TestLoadFromEnv_productionGuards(t *testing.T) {
	t.Run("requires_jwt_secret", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example")

		_, err := LoadFromEnv()

		require.Error(t, err)
	})

	t.Run("rejects_cors_wildcard", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("JWT_SECRET", "s3cret")

		_, err := LoadFromEnv()

		require.Error(t, err)
	})

	t.Run("valid_production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example")

		cfg, err := LoadFromEnv()

		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "WARNING"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: ""}).SlogLevel())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\nSUITE_DIR='checks'\nBROKEN LINE\nLOG_LEVEL=\"debug\"\n"), 0o600))
	t.Setenv("SUITE_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "checks", os.Getenv("SUITE_DIR"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_missingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
