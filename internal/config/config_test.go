package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DOCFILL_API_URL", "DOCFILL_TIMEOUT", "DOCFILL_DEBUG", "DOCFILL_DARK_MODE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "http://localhost:5001" {
		t.Errorf("expected BaseURL=http://localhost:5001, got %s", cfg.API.BaseURL)
	}
	if cfg.UI.ProgressRows != 10 {
		t.Errorf("expected ProgressRows=10, got %d", cfg.UI.ProgressRows)
	}
	if cfg.Logging.DebugMode {
		t.Error("logging must be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://assistant:8000"
	cfg.UI.DarkMode = false
	cfg.Logging.Categories = map[string]bool{"api": false}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://assistant:8000", loaded.API.BaseURL)
	assert.False(t, loaded.UI.DarkMode)
	assert.Equal(t, map[string]bool{"api": false}, loaded.Logging.Categories)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: 5s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "5s", cfg.API.Timeout)
	assert.Equal(t, "http://localhost:5001", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetTimeout())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.API.BaseURL = "localhost" }},
		{"unparseable timeout", func(c *Config) { c.API.Timeout = "soon" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = "0s" }},
		{"negative preview delay", func(c *Config) { c.API.PreviewDelay = "-1s" }},
		{"negative progress rows", func(c *Config) { c.UI.ProgressRows = -1 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "bogus"
	cfg.API.PreviewDelay = "bogus"
	assert.Equal(t, 60*time.Second, cfg.GetTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.GetPreviewDelay())

	cfg.API.PreviewDelay = "0s"
	assert.Equal(t, time.Duration(0), cfg.GetPreviewDelay())
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{Categories: map[string]bool{"api": false}}
	assert.False(t, lc.IsCategoryEnabled("session"), "debug off disables everything")

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("session"))
	assert.False(t, lc.IsCategoryEnabled("api"))
}

func TestLoggingConfig_ToLogging(t *testing.T) {
	lc := LoggingConfig{DebugMode: true, Level: "warn", JSONFormat: true, MaxSizeMB: 4, MaxBackups: 2}
	out := lc.ToLogging()
	assert.True(t, out.DebugMode)
	assert.Equal(t, "warn", out.Level)
	assert.True(t, out.JSONFormat)
	assert.Equal(t, 4, out.MaxSizeMB)
	assert.Equal(t, 2, out.MaxBackups)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".docfill", "config.yaml"), DefaultPath())
}
