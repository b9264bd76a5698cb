package prompts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/metrics"
)

// ImportMode decides what happens when a file names an existing prompt.
type ImportMode int

const (
	// ImportSkipExisting leaves existing prompts untouched.
	ImportSkipExisting ImportMode = iota
	// ImportReplace overwrites content, variables and metadata of existing prompts.
	ImportReplace
)

// ImportResult lists prompt names by outcome.
type ImportResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

// Import stores prompt files. It stops at the first failing file.
func (s *Service) Import(ctx context.Context, files []*File, mode ImportMode) (*ImportResult, error) {
	result := &ImportResult{Created: []string{}, Updated: []string{}, Skipped: []string{}}

	for _, file := range files {
		if file == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		existing, err := s.repo.GetPromptByName(ctx, file.Name)
		switch {
		case err == nil && mode == ImportSkipExisting:
			result.Skipped = append(result.Skipped, file.Name)
			continue
		case err == nil:
			in := file.Input()
			patch := core.PromptPatch{
				Content:   &in.Content,
				Variables: &in.Variables,
				Metadata:  in.Metadata,
				Version:   in.Version,
				Active:    in.Active,
			}
			if _, err := s.Update(ctx, existing.ID, patch); err != nil {
				return result, fmt.Errorf("import %s: %w", file.Source, err)
			}
			result.Updated = append(result.Updated, file.Name)
		case isNotFound(err):
			if _, err := s.Create(ctx, file.Input()); err != nil {
				return result, fmt.Errorf("import %s: %w", file.Source, err)
			}
			result.Created = append(result.Created, file.Name)
		default:
			return result, fmt.Errorf("import %s: %w", file.Source, err)
		}
	}

	metrics.RecordPromptWrite("import", true)
	s.info("Prompts imported",
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// SeedBuiltin inserts embedded prompts whose names are not yet stored.
func (s *Service) SeedBuiltin(ctx context.Context) (*ImportResult, error) {
	lib, err := BuiltinLibrary()
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, lib.List(), ImportSkipExisting)
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
