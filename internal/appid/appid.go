// Package appid holds the application identity used for CLI help, config
// discovery, environment variable names and telemetry namespaces.
package appid

import "strings"

const (
	BinaryName  = "promptstudio"
	ConfigName  = "promptstudio"
	EnvPrefix   = "PROMPTSTUDIO_"
	Vendor      = "mkashifaslam"
	Description = "Prompt template studio with typed variables and MCP server configuration"
)

// Identity describes the running application.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Vendor      string
	Description string
}

// Get returns the application identity.
func Get() Identity {
	return Identity{
		BinaryName:  BinaryName,
		ConfigName:  ConfigName,
		EnvPrefix:   EnvPrefix,
		Vendor:      Vendor,
		Description: Description,
	}
}

// TelemetryNamespace returns the metrics namespace derived from the binary name.
func (i Identity) TelemetryNamespace() string {
	name := strings.TrimSpace(i.BinaryName)
	if name == "" {
		return "app"
	}
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// Env returns the prefixed environment variable name for key.
func (i Identity) Env(key string) string {
	prefix := i.EnvPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + key
}
