package observability

import (
	"context"
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServerLoggerConfig(t *testing.T) {
	t.Run("StructuredDefault", func(t *testing.T) {
		cfg := serverLoggerConfig(ServerLoggerOptions{Service: "promptstudio", Level: "debug", Namespace: "promptstudio"})

		assert.Equal(t, logging.ProfileStructured, cfg.Profile)
		assert.Equal(t, "DEBUG", cfg.DefaultLevel)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "promptstudio", cfg.StaticFields["namespace"])
		require.Len(t, cfg.Sinks, 1)
		assert.Equal(t, "json", cfg.Sinks[0].Format)
		require.Len(t, cfg.Middleware, 1)
		assert.Equal(t, "correlation", cfg.Middleware[0].Name)
		assert.True(t, cfg.EnableStacktrace)
	})

	t.Run("Simple", func(t *testing.T) {
		cfg := serverLoggerConfig(ServerLoggerOptions{Service: "promptstudio", Environment: "development", Profile: " simple "})

		assert.Equal(t, logging.ProfileSimple, cfg.Profile)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, "console", cfg.Sinks[0].Format)
		assert.Empty(t, cfg.Middleware)
		assert.False(t, cfg.EnableStacktrace)
		assert.Empty(t, cfg.StaticFields)
	})
}

func TestParseLogLevel(t *testing.T) {
	for input, want := range map[string]string{
		"trace":   "TRACE",
		" Debug ": "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"verbose": "INFO",
		"":        "INFO",
	} {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}

func TestInitLoggers(t *testing.T) {
	InitCLILogger("promptstudio-test", true)
	require.NotNil(t, CLILogger)
	CLILogger.Debug("cli logger ready", zap.String("command", "vars"))

	for _, profile := range []string{"STRUCTURED", "SIMPLE"} {
		InitServerLogger(ServerLoggerOptions{Service: "promptstudio-test", Level: "info", Environment: "test", Profile: profile})
		require.NotNil(t, ServerLogger, profile)
		ServerLogger.Info("server logger ready", zap.String("profile", profile), zap.String("prompt_id", "p-123"))
	}
}

func TestTelemetryChecker(t *testing.T) {
	originalSystem, originalExporter := TelemetrySystem, PrometheusExporter
	t.Cleanup(func() {
		TelemetrySystem, PrometheusExporter = originalSystem, originalExporter
	})

	TelemetrySystem, PrometheusExporter = nil, nil
	assert.ErrorIs(t, TelemetryChecker{}.CheckHealth(context.Background()), ErrTelemetryDisabled)
	assert.NoError(t, ShutdownMetrics())
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9464")
	require.NoError(t, err)
	assert.Equal(t, 9464, port)

	_, err = resolvePort("no-port")
	assert.Error(t, err)
}

func TestEmbeddedCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}
