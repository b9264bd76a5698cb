package store

import (
	"context"
	"fmt"
)

// Column types are chosen to be valid in both SQLite (libsql) and postgres:
// ids are text UUIDs, JSON documents are text and timestamps are unix
// milliseconds.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS prompts (
		id TEXT PRIMARY KEY,
		name VARCHAR(160) NOT NULL UNIQUE,
		content TEXT NOT NULL,
		variables TEXT NOT NULL DEFAULT '[]',
		metadata TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_prompts_updated ON prompts(updated_at);`,
	`CREATE TABLE IF NOT EXISTS mcp_configs (
		id TEXT PRIMARY KEY,
		name VARCHAR(160) NOT NULL UNIQUE,
		config TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_mcp_configs_updated ON mcp_configs(updated_at);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
