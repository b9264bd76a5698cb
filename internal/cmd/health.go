package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	errwrap "github.com/mkashifaslam/prompt-studio/internal/errors"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the server can start: config, store and builtin prompts.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := observability.CLILogger
		log.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		log.Debug("Version check passed", zap.String("version", versionInfo.Version))
		log.Info("✅ Version information available")

		cfg, err := config.Load(ctx)
		if err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Configuration invalid", errwrap.WrapConfigInvalid(ctx, err, "config load failed"))
			return
		}
		log.Info("✅ Configuration loaded", zap.String("environment", cfg.Environment))

		db, err := openStore(ctx, cfg)
		if err != nil {
			ExitWithCode(log, foundry.ExitExternalServiceUnavailable, "Store unavailable", errwrap.WrapDatabaseError(ctx, err, "store open failed"))
			return
		}
		defer db.Close() //nolint:errcheck
		if err := db.CheckHealth(ctx); err != nil {
			ExitWithCode(log, foundry.ExitExternalServiceUnavailable, "Store unavailable", errwrap.WrapDatabaseError(ctx, err, "store ping failed"))
			return
		}
		log.Info("✅ Store reachable and migrated", zap.String("driver", db.Driver()))

		if _, err := prompts.BuiltinLibrary(); err != nil {
			ExitWithCode(log, foundry.ExitFailure, "Builtin prompts invalid", errwrap.WrapInternal(ctx, err, "builtin library failed to load"))
			return
		}
		log.Info("✅ Builtin prompt library loads")

		log.Info("")
		log.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
