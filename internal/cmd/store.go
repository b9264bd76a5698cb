package cmd

import (
	"context"
	"fmt"

	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/core/mcp"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/store"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// services bundles the store and the services the CLI commands share.
type services struct {
	store   *store.Store
	prompts *prompts.Service
	mcp     *mcp.Service
}

func (s *services) Close() error {
	return s.store.Close()
}

// openServices loads config, opens the store and builds the services
// logging through the CLI logger.
func openServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &services{
		store:   db,
		prompts: prompts.NewService(db, prompts.WithLogger(observability.CLILogger)),
		mcp:     mcp.NewService(db, mcp.WithLogger(observability.CLILogger)),
	}, nil
}
