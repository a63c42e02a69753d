package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("DOCFILL_API_URL replaces base url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_API_URL", "http://remote:9000")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://remote:9000", cfg.API.BaseURL)
	})

	t.Run("DOCFILL_TIMEOUT replaces timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_TIMEOUT", "15s")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "15s", cfg.API.Timeout)
	})

	t.Run("DOCFILL_DEBUG enables logging", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_DEBUG", "true")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("DOCFILL_DEBUG raises the default level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_DEBUG", "1")

		cfg := DefaultConfig()
		require.Equal(t, "info", cfg.Logging.Level)
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("DOCFILL_DEBUG false leaves the level alone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_DEBUG", "false")

		cfg := DefaultConfig()
		cfg.Logging.Level = "warn"
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("unparseable booleans are ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_DEBUG", "maybe")
		t.Setenv("DOCFILL_DARK_MODE", "sometimes")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
		assert.True(t, cfg.UI.DarkMode)
	})

	t.Run("DOCFILL_DARK_MODE false selects light theme", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DOCFILL_DARK_MODE", "false")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.UI.DarkMode)
	})
}

func TestEnvOverrides_WinOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file:1\n"), 0644))
	t.Setenv("DOCFILL_API_URL", "http://env:2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.API.BaseURL)
}
