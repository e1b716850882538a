package config

import (
	"net/url"
	"time"
)

// PublishConfig configures forwarding of analyses to an ingestion endpoint.
type PublishConfig struct {
	// Enabled turns forwarding on
	Enabled bool `yaml:"enabled"`

	// Endpoint is the URL reports are POSTed to
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after a failed attempt
	MaxRetries int `yaml:"max_retries"`

	// BufferSize is the capacity of the asynchronous queue
	BufferSize int `yaml:"buffer_size"`

	// DropOnFull drops reports instead of blocking when the queue is full
	DropOnFull bool `yaml:"drop_on_full"`

	// Headers are added to every request
	Headers map[string]string `yaml:"headers"`
}

// DefaultPublishConfig returns PublishConfig with forwarding disabled.
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		Enabled:    false,
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		BufferSize: 256,
		DropOnFull: true,
	}
}

// Validate validates the PublishConfig values.
func (c *PublishConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Endpoint == "" {
		return &ConfigError{Section: "publish", Field: "endpoint", Message: "cannot be empty when publishing is enabled", Value: c.Endpoint}
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Section: "publish", Field: "endpoint", Message: "must be an absolute http(s) URL", Value: c.Endpoint}
	}

	if c.Timeout <= 0 {
		return &ConfigError{Section: "publish", Field: "timeout", Message: "must be > 0", Value: c.Timeout}
	}

	if c.MaxRetries < 0 {
		return &ConfigError{Section: "publish", Field: "max_retries", Message: "must be >= 0", Value: c.MaxRetries}
	}

	if c.BufferSize <= 0 {
		return &ConfigError{Section: "publish", Field: "buffer_size", Message: "must be > 0", Value: c.BufferSize}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Section string
	Field   string
	Message string
	Value   interface{}
}

func (e *ConfigError) Error() string {
	if e.Section == "" {
		return e.Field + ": " + e.Message
	}
	return e.Section + "." + e.Field + ": " + e.Message
}
