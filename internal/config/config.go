package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Config represents the complete application configuration.
// Values are layered: built-in defaults, then the user config file, then
// PROMPTSTUDIO_* environment variables, then runtime overrides (CLI flags).
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Store       StoreConfig   `mapstructure:"store"`
	CORS        CORSConfig    `mapstructure:"cors"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Health      HealthConfig  `mapstructure:"health"`
	Prompts     PromptsConfig `mapstructure:"prompts"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// StoreConfig selects the database driver and its connection settings.
// Driver is "libsql" (embedded file, :memory: or Turso URL) or "postgres".
type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	Path         string `mapstructure:"path"`
	URL          string `mapstructure:"url"`
	AuthToken    string `mapstructure:"auth_token"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// CORSConfig controls cross-origin access to the REST API.
// An empty AllowedOrigins list allows every origin.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PromptsConfig controls prompt seeding at startup.
type PromptsConfig struct {
	// SeedBuiltin inserts the embedded prompt library when a name is missing.
	SeedBuiltin bool `mapstructure:"seed_builtin"`

	// Dir is an optional directory of prompt files imported at startup.
	Dir string `mapstructure:"dir"`
}

// Environments lists the accepted values of Config.Environment.
var Environments = []string{"development", "production", "test"}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("environment must be one of %s, got %q", strings.Join(Environments, ", "), c.Environment)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case "libsql":
		if strings.TrimSpace(c.Store.Path) == "" && strings.TrimSpace(c.Store.URL) == "" {
			return fmt.Errorf("store path or url is required for libsql")
		}
	case "postgres":
		if strings.TrimSpace(c.Store.URL) == "" {
			return fmt.Errorf("store url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	return nil
}
