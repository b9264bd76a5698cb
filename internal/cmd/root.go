package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/appid"
	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appid.BinaryName,
	Short: appid.Description,
	Long: fmt.Sprintf(`%s - %s

Prompts are text templates with {{placeholders}}. Each placeholder is backed by
a typed variable definition (string, number, boolean or select) that is kept in
sync with the template content.

Use the subcommands to serve the REST API or manage prompts and MCP server
configurations directly against the configured store.`, appid.BinaryName, appid.Description),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so CLI commands never emit metrics to
	// stdout. Server mode initializes the Prometheus exporter later.
	disabledConfig := &telemetry.Config{Enabled: false}
	if sys, err := telemetry.NewSystem(disabledConfig); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", appid.ConfigName))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig wires the CLI logger and pins the config file for config.Load.
func initConfig() {
	observability.InitCLILogger(appid.BinaryName, verbose)

	config.SetConfigFile(cfgFile)
	if path := config.ConfigFileUsed(); path != "" {
		observability.CLILogger.Debug("Using config file", zap.String("path", path))
	} else {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	}
}
