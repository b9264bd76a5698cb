package cmd

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/appid"
	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/core/mcp"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	errwrap "github.com/mkashifaslam/prompt-studio/internal/errors"
	"github.com/mkashifaslam/prompt-studio/internal/metrics"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
	"github.com/mkashifaslam/prompt-studio/internal/server"
	"github.com/mkashifaslam/prompt-studio/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the REST API with graceful shutdown support.

The store is migrated on startup. Builtin prompts are seeded when
prompts.seed_builtin is set, and prompts.dir is imported without
replacing prompts that already exist.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-validate configuration (restart to apply changes)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		identity := appid.Get()
		namespace := identity.TelemetryNamespace()

		overrides := map[string]any{}
		serverOverrides := map[string]any{}
		if cmd.Flags().Changed("host") {
			serverOverrides["host"] = serverHost
		}
		if cmd.Flags().Changed("port") {
			serverOverrides["port"] = serverPort
		}
		if len(serverOverrides) > 0 {
			overrides["server"] = serverOverrides
		}

		cfg, err := config.Load(ctx, overrides)
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}

		observability.InitServerLogger(observability.ServerLoggerOptions{
			Service:     identity.BinaryName,
			Level:       cfg.Logging.Level,
			Environment: cfg.Environment,
			Profile:     cfg.Logging.Profile,
			Namespace:   namespace,
		})
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
			}
		}

		logger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("environment", cfg.Environment),
			zap.String("store_driver", cfg.Store.Driver),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()))

		db, err := openStore(ctx, cfg)
		if err != nil {
			logger.Error("Failed to open store", zap.Error(err))
			return errwrap.WrapDatabaseError(ctx, err, "store initialization failed")
		}

		promptSvc := prompts.NewService(db, prompts.WithLogger(logger))
		mcpSvc := mcp.NewService(db, mcp.WithLogger(logger))

		if err := seedPrompts(ctx, cfg.Prompts, promptSvc); err != nil {
			_ = db.Close()
			return err
		}

		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("store", db)
		if cfg.Metrics.Enabled {
			hm.RegisterOptionalChecker("telemetry", observability.TelemetryChecker{})
		}
		// Store is migrated and prompts are seeded by now.
		hm.MarkStarted()
		metrics.SetServerStartTime(time.Now())

		handlers.SetAppIdentity(identity)

		srv := server.New(server.Options{
			Server:        cfg.Server,
			CORS:          cfg.CORS,
			HealthEnabled: cfg.Health.Enabled,
			Prompts:       promptSvc,
			Mcp:           mcpSvc,
		})

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		// Handler 2: Stop the metrics exporter
		signals.OnShutdown(func(ctx context.Context) error {
			if err := observability.ShutdownMetrics(); err != nil {
				logger.Warn("Metrics exporter stop failed", zap.Error(err))
			}
			return nil
		})

		// Handler 3: Close the store
		signals.OnShutdown(func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				return errwrap.WrapDatabaseError(ctx, err, "store close failed")
			}
			logger.Info("Store closed")
			return nil
		})

		// Handler 4: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: attempting config reload")

			reloaded, err := config.Load(ctx, overrides)
			if err != nil {
				logger.Error("Failed to reload config", zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			// Running services keep their settings until restart.
			logger.Info("Configuration validated",
				zap.String("file", config.ConfigFileUsed()),
				zap.String("environment", reloaded.Environment),
				zap.Bool("restart_required", !reflect.DeepEqual(reloaded, cfg)))
			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(ctx, err, "server error")
		}

		return nil
	},
}

// seedPrompts imports the builtin library and the configured prompt
// directory. Existing prompts are never replaced at startup.
func seedPrompts(ctx context.Context, cfg config.PromptsConfig, svc *prompts.Service) error {
	logger := observability.ServerLogger

	if cfg.SeedBuiltin {
		result, err := svc.SeedBuiltin(ctx)
		if err != nil {
			logger.Error("Failed to seed builtin prompts", zap.Error(err))
			return errwrap.WrapInternal(ctx, err, "builtin prompt seeding failed")
		}
		logger.Debug("Builtin prompts seeded",
			zap.Strings("created", result.Created),
			zap.Int("skipped", len(result.Skipped)))
	}

	if cfg.Dir == "" {
		return nil
	}

	files, err := prompts.LoadPath(cfg.Dir)
	if err != nil {
		logger.Error("Failed to load prompt directory", zap.String("dir", cfg.Dir), zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "prompt directory could not be loaded")
	}
	result, err := svc.Import(ctx, files, prompts.ImportSkipExisting)
	if err != nil {
		logger.Error("Failed to import prompt directory", zap.String("dir", cfg.Dir), zap.Error(err))
		return errwrap.WrapInternal(ctx, err, "prompt directory import failed")
	}
	logger.Info("Prompt directory imported",
		zap.String("dir", cfg.Dir),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)))
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host (overrides server.host)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 3000, "server port (overrides server.port)")
}
