package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkashifaslam/prompt-studio/internal/core"
)

const mcpColumns = `id, name, config, created_at, updated_at`

// ListMcpConfigs returns every MCP configuration, most recently updated first.
func (s *Store) ListMcpConfigs(ctx context.Context) ([]core.McpConfig, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+mcpColumns+`
		FROM mcp_configs
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list mcp configs: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	records := []core.McpConfig{}
	for rows.Next() {
		record, err := scanMcpConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("list mcp configs: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mcp configs: %w", err)
	}

	return records, nil
}

// GetMcpConfig returns an MCP configuration by id or ErrNotFound.
func (s *Store) GetMcpConfig(ctx context.Context, id string) (*core.McpConfig, error) {
	return s.getMcpConfig(ctx, "id", id)
}

// GetMcpConfigByName returns an MCP configuration by name or ErrNotFound.
func (s *Store) GetMcpConfigByName(ctx context.Context, name string) (*core.McpConfig, error) {
	return s.getMcpConfig(ctx, "name", name)
}

func (s *Store) getMcpConfig(ctx context.Context, column, value string) (*core.McpConfig, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrNotFound
	}

	row := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT `+mcpColumns+`
		FROM mcp_configs
		WHERE `+column+` = ?
	`), value)

	record, err := scanMcpConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch mcp config: %w", err)
	}
	return &record, nil
}

// UpsertMcpConfig creates the record or replaces the config of the record
// with the same name. The id and creation time of an existing record are kept.
func (s *Store) UpsertMcpConfig(ctx context.Context, record core.McpConfig) (*core.McpConfig, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(record.Name)
	if name == "" {
		return nil, errors.New("mcp config name is required")
	}

	payload, err := json.Marshal(record.Config)
	if err != nil {
		return nil, fmt.Errorf("encode mcp config: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO mcp_configs (`+mcpColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config = excluded.config,
			updated_at = excluded.updated_at
	`), record.ID, name, string(payload), record.CreatedAt.UTC().UnixMilli(), record.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("store mcp config: %w", err)
	}

	return s.GetMcpConfigByName(ctx, name)
}

// DeleteMcpConfig removes an MCP configuration by id.
func (s *Store) DeleteMcpConfig(ctx context.Context, id string) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM mcp_configs WHERE id = ?`), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete mcp config: %w", err)
	}
	return requireAffected(result, "delete mcp config")
}

func scanMcpConfig(row rowScanner) (core.McpConfig, error) {
	var (
		record     core.McpConfig
		configJSON string
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&record.ID, &record.Name, &configJSON, &createdAt, &updatedAt); err != nil {
		return core.McpConfig{}, err
	}
	if err := json.Unmarshal([]byte(configJSON), &record.Config); err != nil {
		return core.McpConfig{}, fmt.Errorf("decode mcp config: %w", err)
	}
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return record, nil
}
