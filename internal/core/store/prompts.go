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
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

const promptColumns = `id, name, content, variables, metadata, version, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListPrompts returns all prompts, most recently updated first.
func (s *Store) ListPrompts(ctx context.Context) ([]core.Prompt, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+promptColumns+`
		FROM prompts
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	prompts := []core.Prompt{}
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("list prompts: %w", err)
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	return prompts, nil
}

// GetPrompt returns a prompt by id or ErrNotFound.
func (s *Store) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	return s.getPrompt(ctx, "id", id)
}

// GetPromptByName returns a prompt by its unique name or ErrNotFound.
func (s *Store) GetPromptByName(ctx context.Context, name string) (*core.Prompt, error) {
	return s.getPrompt(ctx, "name", name)
}

func (s *Store) getPrompt(ctx context.Context, column, value string) (*core.Prompt, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrNotFound
	}

	row := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT `+promptColumns+`
		FROM prompts
		WHERE `+column+` = ?
	`), value)

	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch prompt: %w", err)
	}
	return &prompt, nil
}

// InsertPrompt stores a new prompt. A duplicate name yields ErrConflict.
func (s *Store) InsertPrompt(ctx context.Context, prompt core.Prompt) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	vars, meta, err := encodePromptDocs(prompt)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO prompts (`+promptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), prompt.ID, prompt.Name, prompt.Content, vars, meta, prompt.Version, boolToInt(prompt.Active),
		prompt.CreatedAt.UTC().UnixMilli(), prompt.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("prompt %q: %w", prompt.Name, ErrConflict)
		}
		return fmt.Errorf("store prompt: %w", err)
	}
	return nil
}

// UpdatePrompt replaces the mutable fields of an existing prompt.
func (s *Store) UpdatePrompt(ctx context.Context, prompt core.Prompt) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	vars, meta, err := encodePromptDocs(prompt)
	if err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, s.rebind(`
		UPDATE prompts SET
			name = ?,
			content = ?,
			variables = ?,
			metadata = ?,
			version = ?,
			active = ?,
			updated_at = ?
		WHERE id = ?
	`), prompt.Name, prompt.Content, vars, meta, prompt.Version, boolToInt(prompt.Active),
		prompt.UpdatedAt.UTC().UnixMilli(), prompt.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("prompt %q: %w", prompt.Name, ErrConflict)
		}
		return fmt.Errorf("update prompt: %w", err)
	}
	return requireAffected(result, "update prompt")
}

// DeletePrompt removes a prompt by id.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM prompts WHERE id = ?`), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	return requireAffected(result, "delete prompt")
}

// CountPrompts returns the number of stored prompts.
func (s *Store) CountPrompts(ctx context.Context) (int, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count prompts: %w", err)
	}
	return count, nil
}

func scanPrompt(row rowScanner) (core.Prompt, error) {
	var (
		prompt    core.Prompt
		varsJSON  string
		metaJSON  string
		active    int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&prompt.ID, &prompt.Name, &prompt.Content, &varsJSON, &metaJSON,
		&prompt.Version, &active, &createdAt, &updatedAt); err != nil {
		return core.Prompt{}, err
	}

	prompt.Variables = []variables.Definition{}
	if strings.TrimSpace(varsJSON) != "" {
		if err := json.Unmarshal([]byte(varsJSON), &prompt.Variables); err != nil {
			return core.Prompt{}, fmt.Errorf("decode prompt variables: %w", err)
		}
	}
	prompt.Metadata = map[string]any{}
	if strings.TrimSpace(metaJSON) != "" {
		if err := json.Unmarshal([]byte(metaJSON), &prompt.Metadata); err != nil {
			return core.Prompt{}, fmt.Errorf("decode prompt metadata: %w", err)
		}
	}
	prompt.Active = active != 0
	prompt.CreatedAt = time.UnixMilli(createdAt).UTC()
	prompt.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return prompt, nil
}

func encodePromptDocs(prompt core.Prompt) (string, string, error) {
	defs := prompt.Variables
	if defs == nil {
		defs = []variables.Definition{}
	}
	vars, err := json.Marshal(defs)
	if err != nil {
		return "", "", fmt.Errorf("encode prompt variables: %w", err)
	}

	meta := prompt.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", "", fmt.Errorf("encode prompt metadata: %w", err)
	}
	return string(vars), string(metaJSON), nil
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
