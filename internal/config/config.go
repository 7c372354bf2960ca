// ABOUTME: Configuration loading and parsing for engine-router.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default timeouts applied when the config file leaves them unset.
const (
	DefaultSessionTimeout = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// Config represents the complete engine-router configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	NATS     NATSConfig     `yaml:"nats"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the listening address for inbound HTTP.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// NATSConfig holds bus endpoint and timeout configuration.
type NATSConfig struct {
	URL string `yaml:"url"`

	// SessionTimeout bounds the wait for a terminal directive per session.
	// RequestTimeout bounds any single request/reply exchange.
	SessionTimeout time.Duration `yaml:"-"`
	RequestTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SessionTimeoutRaw string `yaml:"session_timeout"`
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// DatabaseConfig holds workspace store configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the optional metrics endpoint configuration. Metrics are
// served on their own address so the gateway's routing surface stays limited
// to the bridge prefixes.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded and
// duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values,
// applying defaults where the file is silent.
func parseDurations(cfg *Config) error {
	var err error

	cfg.NATS.SessionTimeout = DefaultSessionTimeout
	if cfg.NATS.SessionTimeoutRaw != "" {
		cfg.NATS.SessionTimeout, err = time.ParseDuration(cfg.NATS.SessionTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing session_timeout %q: %w", cfg.NATS.SessionTimeoutRaw, err)
		}
	}

	cfg.NATS.RequestTimeout = DefaultRequestTimeout
	if cfg.NATS.RequestTimeoutRaw != "" {
		cfg.NATS.RequestTimeout, err = time.ParseDuration(cfg.NATS.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.NATS.RequestTimeoutRaw, err)
		}
	}

	return nil
}
