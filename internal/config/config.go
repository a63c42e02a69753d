package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all docfill configuration.
type Config struct {
	// Assistant service connection
	API APIConfig `yaml:"api"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote session client.
type APIConfig struct {
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout"`       // per request
	PreviewDelay string `yaml:"preview_delay"` // wait before the first preview fetch after upload
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	DarkMode     bool `yaml:"dark_mode"`
	ProgressRows int  `yaml:"progress_rows"` // rows shown before "+N more fields"
	Mouse        bool `yaml:"mouse"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:5001",
			Timeout:      "60s",
			PreviewDelay: "500ms",
		},
		UI: UIConfig{
			DarkMode:     true,
			ProgressRows: 10,
			Mouse:        true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// DefaultPath returns ~/.docfill/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docfill", "config.yaml")
	}
	return filepath.Join(home, ".docfill", "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Unparseable boolean values are ignored.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("DOCFILL_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if d := os.Getenv("DOCFILL_TIMEOUT"); d != "" {
		c.API.Timeout = d
	}
	if v := os.Getenv("DOCFILL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
			if b {
				c.Logging.Level = "debug"
			}
		}
	}
	if v := os.Getenv("DOCFILL_DARK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UI.DarkMode = b
		}
	}
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetPreviewDelay returns the initial preview delay as a duration.
func (c *Config) GetPreviewDelay() time.Duration {
	d, err := time.ParseDuration(c.API.PreviewDelay)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url not configured (set DOCFILL_API_URL)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}

	timeout, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return fmt.Errorf("invalid api.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}

	if c.API.PreviewDelay != "" {
		delay, err := time.ParseDuration(c.API.PreviewDelay)
		if err != nil {
			return fmt.Errorf("invalid api.preview_delay: %w", err)
		}
		if delay < 0 {
			return fmt.Errorf("api.preview_delay must not be negative, got %s", c.API.PreviewDelay)
		}
	}

	if c.UI.ProgressRows < 0 {
		return fmt.Errorf("ui.progress_rows must not be negative, got %d", c.UI.ProgressRows)
	}

	if c.Logging.Level != "" {
		validLevel := false
		for _, l := range ValidLevels {
			if c.Logging.Level == l {
				validLevel = true
				break
			}
		}
		if !validLevel {
			return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
		}
	}

	return nil
}
