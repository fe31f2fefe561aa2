package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/config"
)

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.yaml")
	body := "convergence_tolerance: 1.0e-10\ninterpolation: LOG_LINEAR\nallow_extrapolation: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 1e-10, cfg.ConvergenceTolerance, 0)
	assert.Equal(t, "LOG_LINEAR", cfg.Interpolation)
	assert.True(t, cfg.AllowExtrapolation)
	assert.Equal(t, config.DefaultConfig.MaxBootstrapIterations, cfg.MaxBootstrapIterations)
	assert.Equal(t, "ACT/365F", cfg.CurveDayCount)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig, cfg)
}

func TestLoadRejectsBadBracket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_forward_rate: 0.5\nmax_forward_rate: 0.1\n"), 0o644))
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TERMSTRUCT_MAX_PASSES=7\n"), 0o644))
	t.Setenv("TERMSTRUCT_INTERPOLATION", "LOG_LINEAR")
	// Registers cleanup; godotenv only sets variables that are absent.
	t.Setenv("TERMSTRUCT_MAX_PASSES", "")
	require.NoError(t, os.Unsetenv("TERMSTRUCT_MAX_PASSES"))

	cfg, err := config.FromEnv(config.DefaultConfig, envFile)
	require.NoError(t, err)
	assert.Equal(t, "LOG_LINEAR", cfg.Interpolation)
	assert.Equal(t, 7, cfg.MaxBootstrapPasses)

	t.Setenv("TERMSTRUCT_INTERPOLATION", "SPLINE")
	_, err = config.FromEnv(config.DefaultConfig)
	require.Error(t, err)
}

func TestSetGetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := config.DefaultConfig
	c.MaxBootstrapPasses = 3
	config.SetConfig(c)
	assert.Equal(t, 3, config.GetConfig().MaxBootstrapPasses)
}
