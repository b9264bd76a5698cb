// Package config provides centralized configuration management for the
// prompt studio. Layers, lowest precedence first:
//
//  1. built-in defaults (ApplyDefaults)
//  2. the user config file (--config, $XDG_CONFIG_HOME/promptstudio/config.yaml or ./config/config.yaml)
//  3. PROMPTSTUDIO_* environment variables
//  4. runtime overrides passed to Load (CLI flags)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mkashifaslam/prompt-studio/internal/appid"
)

var (
	// appConfig holds the current application configuration
	appConfig  *Config
	configMu   sync.RWMutex
	configFile string
)

// EnvVarSpec defines environment variable mappings for config fields
// following the pattern: {PREFIX}{NAME} maps to config path
type EnvVarSpec = gfconfig.EnvVarSpec

// Environment variable types
const (
	EnvString = gfconfig.EnvString
	EnvInt    = gfconfig.EnvInt
	EnvBool   = gfconfig.EnvBool
)

// SetConfigFile pins the config file used by Load. An empty path restores
// discovery through the default locations.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFile = strings.TrimSpace(path)
}

// ConfigFileUsed returns the config file Load would read, or "" when none exists.
func ConfigFileUsed() string {
	path, err := resolveConfigFile()
	if err != nil {
		return ""
	}
	return path
}

// ApplyDefaults registers the built-in configuration defaults on v.
func ApplyDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")
	v.SetDefault("store.max_open_conns", 0)

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	v.SetDefault("prompts.seed_builtin", true)
	v.SetDefault("prompts.dir", "")
}

// Load assembles the configuration from every layer and stores it for
// GetConfig. It is safe to call repeatedly (e.g., for config reload).
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	ApplyDefaults(v)

	path, err := resolveConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// Load environment variable overrides
	envOverrides, err := gfconfig.LoadEnvOverrides(getEnvSpecs())
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if len(envOverrides) > 0 {
		if err := v.MergeConfigMap(envOverrides); err != nil {
			return nil, fmt.Errorf("failed to merge environment overrides: %w", err)
		}
	}

	for _, overrides := range runtimeOverrides {
		if len(overrides) == 0 {
			continue
		}
		if err := v.MergeConfigMap(overrides); err != nil {
			return nil, fmt.Errorf("failed to merge runtime overrides: %w", err)
		}
	}

	// Unmarshal into typed config struct
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "libsql" && strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	cfg.CORS.AllowedOrigins = cleanList(cfg.CORS.AllowedOrigins)
	cfg.Logging.Profile = strings.ToUpper(strings.TrimSpace(cfg.Logging.Profile))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	setConfig(cfg)

	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

func resolveConfigFile() (string, error) {
	configMu.RLock()
	explicit := configFile
	configMu.RUnlock()

	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, candidate := range defaultConfigCandidates() {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("inspect config file %s: %w", candidate, err)
		}
	}
	return "", nil
}

func defaultConfigCandidates() []string {
	var candidates []string
	if path := DefaultConfigPath(); path != "" {
		candidates = append(candidates, path)
	}
	return append(candidates, filepath.Join("config", "config.yaml"))
}

// getEnvSpecs returns environment variable specifications for config mapping
// Maps {PREFIX}{NAME} environment variables to config paths
func getEnvSpecs() []EnvVarSpec {
	id := appid.Get()

	return []EnvVarSpec{
		{Name: id.Env("ENVIRONMENT"), Path: []string{"environment"}, Type: EnvString},

		// Server config
		{Name: id.Env("HOST"), Path: []string{"server", "host"}, Type: EnvString},
		{Name: id.Env("PORT"), Path: []string{"server", "port"}, Type: EnvInt},
		// Duration fields are parsed as strings and converted by mapstructure decode hook
		{Name: id.Env("READ_TIMEOUT"), Path: []string{"server", "read_timeout"}, Type: EnvString},
		{Name: id.Env("WRITE_TIMEOUT"), Path: []string{"server", "write_timeout"}, Type: EnvString},
		{Name: id.Env("IDLE_TIMEOUT"), Path: []string{"server", "idle_timeout"}, Type: EnvString},
		{Name: id.Env("SHUTDOWN_TIMEOUT"), Path: []string{"server", "shutdown_timeout"}, Type: EnvString},
		{Name: id.Env("MAX_BODY_BYTES"), Path: []string{"server", "max_body_bytes"}, Type: EnvInt},

		{Name: id.Env("LOG_LEVEL"), Path: []string{"logging", "level"}, Type: EnvString},
		{Name: id.Env("LOG_PROFILE"), Path: []string{"logging", "profile"}, Type: EnvString},

		// Store config
		{Name: id.Env("DB_DRIVER"), Path: []string{"store", "driver"}, Type: EnvString},
		{Name: id.Env("DB_PATH"), Path: []string{"store", "path"}, Type: EnvString},
		{Name: id.Env("DB_URL"), Path: []string{"store", "url"}, Type: EnvString},
		{Name: id.Env("DB_AUTH_TOKEN"), Path: []string{"store", "auth_token"}, Type: EnvString},
		{Name: id.Env("DB_MAX_OPEN_CONNS"), Path: []string{"store", "max_open_conns"}, Type: EnvInt},

		// Comma separated, split by the slice decode hook
		{Name: id.Env("CORS_ORIGIN"), Path: []string{"cors", "allowed_origins"}, Type: EnvString},
		{Name: id.Env("CORS_ALLOW_CREDENTIALS"), Path: []string{"cors", "allow_credentials"}, Type: EnvBool},

		{Name: id.Env("METRICS_ENABLED"), Path: []string{"metrics", "enabled"}, Type: EnvBool},
		{Name: id.Env("METRICS_PORT"), Path: []string{"metrics", "port"}, Type: EnvInt},

		{Name: id.Env("HEALTH_ENABLED"), Path: []string{"health", "enabled"}, Type: EnvBool},

		{Name: id.Env("PROMPTS_SEED_BUILTIN"), Path: []string{"prompts", "seed_builtin"}, Type: EnvBool},
		{Name: id.Env("PROMPTS_DIR"), Path: []string{"prompts", "dir"}, Type: EnvString},
	}
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(appid.ConfigName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appid.BinaryName + ".db"
	}
	return filepath.Join(dataDir, appid.BinaryName+".db")
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
