// Package observability owns the process-wide loggers and the telemetry
// system shared by the CLI and the HTTP server.
package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger is used for CLI commands (SIMPLE profile)
	CLILogger *logging.Logger

	// ServerLogger is used for HTTP server (STRUCTURED profile)
	ServerLogger *logging.Logger
)

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// ServerLoggerOptions configures the HTTP server logger.
type ServerLoggerOptions struct {
	Service     string
	Level       string
	Environment string
	// Profile is SIMPLE for console output or STRUCTURED for JSON lines.
	Profile   string
	Namespace string
}

// InitServerLogger initializes the server logger from opts.
func InitServerLogger(opts ServerLoggerOptions) {
	logger, err := logging.New(serverLoggerConfig(opts))
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// serverLoggerConfig maps options to a gofulmen logger config. STRUCTURED,
// the default, writes JSON to stderr with the correlation middleware; SIMPLE
// writes plain console lines without stack traces.
func serverLoggerConfig(opts ServerLoggerOptions) *logging.LoggerConfig {
	environment := opts.Environment
	if environment == "" {
		environment = "production"
	}

	staticFields := make(map[string]any)
	if opts.Namespace != "" {
		staticFields["namespace"] = opts.Namespace
	}

	sink := logging.SinkConfig{
		Type:    "console",
		Format:  "json",
		Console: &logging.ConsoleSinkConfig{Stream: "stderr", Colorize: false},
	}

	config := &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(opts.Level),
		Service:      opts.Service,
		Environment:  environment,
		StaticFields: staticFields,
		Middleware: []logging.MiddlewareConfig{
			{Name: "correlation", Enabled: true, Order: 100, Config: make(map[string]any)},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}

	if strings.EqualFold(strings.TrimSpace(opts.Profile), "SIMPLE") {
		config.Profile = logging.ProfileSimple
		config.Middleware = nil
		sink.Format = "console"
		config.EnableStacktrace = false
	}
	config.Sinks = []logging.SinkConfig{sink}
	return config
}

// parseLogLevel converts a config level to a gofulmen severity name.
// Unknown values fall back to INFO.
func parseLogLevel(levelStr string) string {
	switch level := strings.ToUpper(strings.TrimSpace(levelStr)); level {
	case "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return level
	case "WARNING":
		return "WARN"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr reports a logger initialization failure before any
// logger exists and exits with the foundry code.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(exitCode))
}
