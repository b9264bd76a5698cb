package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/appid"
	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== Prompt Studio Environment Information ===")
		log.Info("")

		log.Info("Application:")
		log.Info("  Name:       " + appid.BinaryName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Env Prefix: " + appid.EnvPrefix)
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		log.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := config.ConfigFileUsed()
		if configFile == "" {
			configFile = "(none, default " + config.DefaultConfigPath() + ")"
		}

		log.Info("Configuration:")
		log.Info("  Config File:    "+configFile, zap.String("config_file", configFile))
		log.Info("  Environment:    "+cfg.Environment, zap.String("environment", cfg.Environment))
		log.Info("  Server:         "+fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Max Body:       %s", formatFileSize(cfg.Server.MaxBodyBytes)))
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		log.Info("  DB Driver:      "+cfg.Store.Driver, zap.String("db_driver", cfg.Store.Driver))
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  DB URL:         " + redactURL(cfg.Store.URL))
		} else {
			log.Info("  DB Path:        "+cfg.Store.Path, zap.String("db_path", cfg.Store.Path))
		}
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info(fmt.Sprintf("  Health Routes:  %t", cfg.Health.Enabled))
		origins := "(all)"
		if len(cfg.CORS.AllowedOrigins) > 0 {
			origins = strings.Join(cfg.CORS.AllowedOrigins, ", ")
		}
		log.Info("  CORS Origins:   " + origins)
		log.Info("")

		log.Info("Prompts:")
		log.Info(fmt.Sprintf("  Seed Builtin:   %t", cfg.Prompts.SeedBuiltin))
		dir := cfg.Prompts.Dir
		if dir == "" {
			dir = "(unset)"
		}
		log.Info("  Import Dir:     " + dir)
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
