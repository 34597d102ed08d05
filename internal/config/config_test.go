package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "openai", cfg.OracleProvider)
	assert.Equal(t, 100, cfg.MaxComparative)
	assert.Equal(t, 1, cfg.PipelineConcurrency)
	assert.Equal(t, 24000, cfg.RerankTokenBudget)
	assert.False(t, cfg.SurfaceRawResponses)
	assert.Equal(t, 90*time.Second, cfg.OracleTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("ORACLE_PROVIDER", "stub")
	t.Setenv("MAX_COMPARATIVE", "50")
	t.Setenv("PIPELINE_CONCURRENCY", "8")
	t.Setenv("SURFACE_RAW_RESPONSES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "stub", cfg.OracleProvider)
	assert.Equal(t, 50, cfg.MaxComparative)
	assert.Equal(t, 8, cfg.PipelineConcurrency)
	assert.True(t, cfg.SurfaceRawResponses)
}

func TestEnvHelpers(t *testing.T) {
	assert.True(t, Config{AppEnv: "dev"}.IsDev())
	assert.True(t, Config{AppEnv: "PROD"}.IsProd())
	assert.True(t, Config{AppEnv: "test"}.IsTest())
	assert.False(t, Config{AppEnv: "test"}.IsProd())
}

func TestOracleBackoffConfig_TestModeShortens(t *testing.T) {
	cfg := Config{
		AppEnv:                       "test",
		OracleBackoffMaxElapsedTime:  60 * time.Second,
		OracleBackoffInitialInterval: 2 * time.Second,
	}
	maxElapsed, initial, _, _ := cfg.OracleBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 50*time.Millisecond, initial)

	cfg.AppEnv = "prod"
	maxElapsed, initial, _, _ = cfg.OracleBackoffConfig()
	assert.Equal(t, 60*time.Second, maxElapsed)
	assert.Equal(t, 2*time.Second, initial)
}
