package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AnalyzerConfig configures classification
type AnalyzerConfig struct {
	// ContextRadius is the number of source lines shown around the error line
	ContextRadius int `yaml:"context_radius"`
}

// HistoryConfig configures the SQLite analysis history
type HistoryConfig struct {
	// Enabled persists every analysis
	Enabled bool `yaml:"enabled"`

	// DBPath is the database file; empty means $VERDICT_HOME/history/analyses.db
	DBPath string `yaml:"db_path"`

	// KeepDays removes analyses older than this many days on start (0 = keep forever)
	KeepDays int `yaml:"keep_days"`

	// ReplayOnStart rebuilds the frequency store from history when serving
	ReplayOnStart bool `yaml:"replay_on_start"`
}

// ServerConfig configures `verdict serve`
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Config represents verdict configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written; empty means $VERDICT_HOME/logs
	LogDir string `yaml:"log_dir"`

	Analyzer AnalyzerConfig `yaml:"analyzer"`
	History  HistoryConfig  `yaml:"history"`
	Publish  PublishConfig  `yaml:"publish"`
	Server   ServerConfig   `yaml:"server"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Analyzer: AnalyzerConfig{
			ContextRadius: 2,
		},
		History: HistoryConfig{
			Enabled:       true,
			ReplayOnStart: true,
		},
		Publish: DefaultPublishConfig(),
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// durations are read as strings so errors name the offending value
	type yamlPublish struct {
		Enabled    bool              `yaml:"enabled"`
		Endpoint   string            `yaml:"endpoint"`
		Timeout    string            `yaml:"timeout"`
		MaxRetries int               `yaml:"max_retries"`
		BufferSize int               `yaml:"buffer_size"`
		DropOnFull bool              `yaml:"drop_on_full"`
		Headers    map[string]string `yaml:"headers"`
	}
	type yamlServer struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	}
	type yamlConfig struct {
		LogLevel string         `yaml:"log_level"`
		LogDir   string         `yaml:"log_dir"`
		Analyzer AnalyzerConfig `yaml:"analyzer"`
		History  HistoryConfig  `yaml:"history"`
		Publish  yamlPublish    `yaml:"publish"`
		Server   yamlServer     `yaml:"server"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A second decode tells which keys were present, so explicit zero values
	// (enabled: false, context_radius: 0) override the defaults.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}

	if analyzer := section(rawMap, "analyzer"); analyzer != nil {
		if has(analyzer, "context_radius") {
			cfg.Analyzer.ContextRadius = yamlCfg.Analyzer.ContextRadius
		}
	}

	if history := section(rawMap, "history"); history != nil {
		h := yamlCfg.History
		if has(history, "enabled") {
			cfg.History.Enabled = h.Enabled
		}
		if has(history, "db_path") {
			cfg.History.DBPath = h.DBPath
		}
		if has(history, "keep_days") {
			cfg.History.KeepDays = h.KeepDays
		}
		if has(history, "replay_on_start") {
			cfg.History.ReplayOnStart = h.ReplayOnStart
		}
	}

	if publish := section(rawMap, "publish"); publish != nil {
		p := yamlCfg.Publish
		if has(publish, "enabled") {
			cfg.Publish.Enabled = p.Enabled
		}
		if has(publish, "endpoint") {
			cfg.Publish.Endpoint = p.Endpoint
		}
		if has(publish, "timeout") {
			timeout, err := time.ParseDuration(p.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid publish.timeout format %q: %w", p.Timeout, err)
			}
			cfg.Publish.Timeout = timeout
		}
		if has(publish, "max_retries") {
			cfg.Publish.MaxRetries = p.MaxRetries
		}
		if has(publish, "buffer_size") {
			cfg.Publish.BufferSize = p.BufferSize
		}
		if has(publish, "drop_on_full") {
			cfg.Publish.DropOnFull = p.DropOnFull
		}
		if has(publish, "headers") {
			cfg.Publish.Headers = p.Headers
		}
	}

	if server := section(rawMap, "server"); server != nil {
		s := yamlCfg.Server
		if has(server, "addr") {
			cfg.Server.Addr = s.Addr
		}
		if has(server, "shutdown_timeout") {
			timeout, err := time.ParseDuration(s.ShutdownTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid server.shutdown_timeout format %q: %w", s.ShutdownTimeout, err)
			}
			cfg.Server.ShutdownTimeout = timeout
		}
	}

	return cfg, nil
}

// LoadConfigFromHome loads $home/config.yaml.
func LoadConfigFromHome(home string) (*Config, error) {
	return LoadConfig(ConfigPath(home))
}

func section(raw map[string]interface{}, name string) map[string]interface{} {
	m, _ := raw[name].(map[string]interface{})
	return m
}

func has(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel, logDir, dbPath, endpoint, addr *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if dbPath != nil {
		c.History.DBPath = *dbPath
	}
	if endpoint != nil {
		c.Publish.Endpoint = *endpoint
		c.Publish.Enabled = *endpoint != ""
	}
	if addr != nil {
		c.Server.Addr = *addr
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return &ConfigError{Field: "log_level", Message: "must be one of: trace, debug, info, warn, error", Value: c.LogLevel}
	}

	if c.Analyzer.ContextRadius < 0 {
		return &ConfigError{Section: "analyzer", Field: "context_radius", Message: "must be >= 0", Value: c.Analyzer.ContextRadius}
	}

	if c.History.KeepDays < 0 {
		return &ConfigError{Section: "history", Field: "keep_days", Message: "must be >= 0", Value: c.History.KeepDays}
	}

	if err := c.Publish.Validate(); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return &ConfigError{Section: "server", Field: "addr", Message: "cannot be empty", Value: c.Server.Addr}
	}
	if c.Server.ShutdownTimeout < 0 {
		return &ConfigError{Section: "server", Field: "shutdown_timeout", Message: "must be >= 0", Value: c.Server.ShutdownTimeout}
	}

	return nil
}
