// Package mcp stores validated MCP server configurations keyed by name.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/metrics"
)

// Repository persists MCP configurations.
type Repository interface {
	ListMcpConfigs(ctx context.Context) ([]core.McpConfig, error)
	GetMcpConfig(ctx context.Context, id string) (*core.McpConfig, error)
	GetMcpConfigByName(ctx context.Context, name string) (*core.McpConfig, error)
	UpsertMcpConfig(ctx context.Context, record core.McpConfig) (*core.McpConfig, error)
	DeleteMcpConfig(ctx context.Context, id string) error
}

// Service implements MCP configuration operations.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService builds an MCP configuration service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every configuration, most recently updated first.
func (s *Service) List(ctx context.Context) ([]core.McpConfig, error) {
	return s.repo.ListMcpConfigs(ctx)
}

// Get returns a configuration by id or core.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*core.McpConfig, error) {
	return s.repo.GetMcpConfig(ctx, id)
}

// Resolve looks a configuration up by id, falling back to its name.
func (s *Service) Resolve(ctx context.Context, ref string) (*core.McpConfig, error) {
	record, err := s.repo.GetMcpConfig(ctx, ref)
	if err == nil || !isNotFound(err) {
		return record, err
	}
	return s.repo.GetMcpConfigByName(ctx, ref)
}

// Upsert validates raw and stores it under name, replacing the configuration
// of an existing record while keeping its id and creation time.
func (s *Service) Upsert(ctx context.Context, name string, raw []byte) (*core.McpConfig, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		metrics.RecordMcpConfigWrite("upsert", false)
		return nil, &ValidationError{Issues: []FieldIssue{{Field: "name", Message: "is required"}}}
	case utf8.RuneCountInString(name) > core.MaxPromptNameLength:
		metrics.RecordMcpConfigWrite("upsert", false)
		return nil, &ValidationError{Issues: []FieldIssue{{
			Field:   "name",
			Message: fmt.Sprintf("must be at most %d characters", core.MaxPromptNameLength),
		}}}
	}

	server, err := ParseServer(raw)
	if err != nil {
		metrics.RecordMcpConfigWrite("upsert", false)
		s.debug("Rejected MCP server config", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	record, err := s.repo.UpsertMcpConfig(ctx, core.McpConfig{
		ID:        s.newID(),
		Name:      name,
		Config:    *server,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		metrics.RecordMcpConfigWrite("upsert", false)
		return nil, err
	}

	metrics.RecordMcpConfigWrite("upsert", true)
	s.info("MCP config saved",
		zap.String("mcp_id", record.ID),
		zap.String("name", record.Name),
		zap.String("transport", string(record.Config.Transport)))
	return record, nil
}

// Delete removes a configuration by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteMcpConfig(ctx, id); err != nil {
		metrics.RecordMcpConfigWrite("delete", false)
		return err
	}
	metrics.RecordMcpConfigWrite("delete", true)
	s.info("MCP config deleted", zap.String("mcp_id", id))
	return nil
}

func (s *Service) info(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}

func (s *Service) debug(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Debug(msg, fields...)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
