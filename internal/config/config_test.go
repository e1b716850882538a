package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Analyzer.ContextRadius != 2 {
		t.Errorf("Analyzer.ContextRadius = %d, want 2", cfg.Analyzer.ContextRadius)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.Publish.Enabled {
		t.Error("Publish.Enabled = true, want false")
	}
	if cfg.Publish.Timeout != 10*time.Second {
		t.Errorf("Publish.Timeout = %v, want 10s", cfg.Publish.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `log_level: debug
log_dir: /tmp/verdict-logs
analyzer:
  context_radius: 4
history:
  db_path: /tmp/verdict.db
  keep_days: 30
publish:
  enabled: true
  endpoint: https://ingest.example.com/errors
  timeout: 3s
  max_retries: 1
  headers:
    Authorization: Bearer abc
server:
  addr: ":9090"
  shutdown_timeout: 2s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/verdict-logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Analyzer.ContextRadius != 4 {
		t.Errorf("ContextRadius = %d, want 4", cfg.Analyzer.ContextRadius)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep its default when omitted")
	}
	if cfg.History.DBPath != "/tmp/verdict.db" || cfg.History.KeepDays != 30 {
		t.Errorf("History = %+v", cfg.History)
	}
	if !cfg.Publish.Enabled || cfg.Publish.Endpoint != "https://ingest.example.com/errors" {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
	if cfg.Publish.Timeout != 3*time.Second {
		t.Errorf("Publish.Timeout = %v, want 3s", cfg.Publish.Timeout)
	}
	if cfg.Publish.MaxRetries != 1 {
		t.Errorf("Publish.MaxRetries = %d, want 1", cfg.Publish.MaxRetries)
	}
	if cfg.Publish.BufferSize != 256 {
		t.Errorf("Publish.BufferSize = %d, want default 256", cfg.Publish.BufferSize)
	}
	if cfg.Publish.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("Publish.Headers = %v", cfg.Publish.Headers)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestLoadConfigExplicitZeroValues tests that present keys override defaults even when zero
func TestLoadConfigExplicitZeroValues(t *testing.T) {
	path := writeConfig(t, `analyzer:
  context_radius: 0
history:
  enabled: false
  replay_on_start: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Analyzer.ContextRadius != 0 {
		t.Errorf("ContextRadius = %d, want 0", cfg.Analyzer.ContextRadius)
	}
	if cfg.History.Enabled || cfg.History.ReplayOnStart {
		t.Errorf("History = %+v, want disabled", cfg.History)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default", cfg.LogLevel)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "log_level: [unclosed"},
		{"bad publish timeout", "publish:\n  timeout: soon\n"},
		{"bad shutdown timeout", "server:\n  shutdown_timeout: 5 parsecs\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfig() expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"negative radius", func(c *Config) { c.Analyzer.ContextRadius = -1 }, "context_radius"},
		{"negative keep days", func(c *Config) { c.History.KeepDays = -3 }, "keep_days"},
		{"publish without endpoint", func(c *Config) { c.Publish.Enabled = true }, "endpoint"},
		{"publish relative endpoint", func(c *Config) {
			c.Publish.Enabled = true
			c.Publish.Endpoint = "/errors"
		}, "endpoint"},
		{"publish zero timeout", func(c *Config) {
			c.Publish.Enabled = true
			c.Publish.Endpoint = "http://localhost:3000/api/errors"
			c.Publish.Timeout = 0
		}, "timeout"},
		{"publish negative retries", func(c *Config) {
			c.Publish.Enabled = true
			c.Publish.Endpoint = "http://localhost:3000/api/errors"
			c.Publish.MaxRetries = -1
		}, "max_retries"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestDisabledPublishSkipsValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Publish.Endpoint = "not a url"
	cfg.Publish.BufferSize = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil while publishing is disabled", err)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Section: "publish", Field: "timeout", Message: "must be > 0"}
	if got := err.Error(); got != "publish.timeout: must be > 0" {
		t.Errorf("Error() = %q", got)
	}
	err = &ConfigError{Field: "log_level", Message: "bad"}
	if got := err.Error(); got != "log_level: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "warn"
	endpoint := "http://localhost:3000/api/errors"
	addr := ":7000"

	cfg.MergeWithFlags(&level, nil, nil, &endpoint, &addr)

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.Publish.Enabled || cfg.Publish.Endpoint != endpoint {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want untouched", cfg.LogDir)
	}
}
