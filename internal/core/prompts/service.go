// Package prompts manages stored prompt templates: creation and update with
// variable reconciliation, rendering, and import from prompt files.
package prompts

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
	"github.com/mkashifaslam/prompt-studio/internal/metrics"
)

// Repository persists prompts.
type Repository interface {
	ListPrompts(ctx context.Context) ([]core.Prompt, error)
	GetPrompt(ctx context.Context, id string) (*core.Prompt, error)
	GetPromptByName(ctx context.Context, name string) (*core.Prompt, error)
	InsertPrompt(ctx context.Context, prompt core.Prompt) error
	UpdatePrompt(ctx context.Context, prompt core.Prompt) error
	DeletePrompt(ctx context.Context, id string) error
}

// FieldError describes an invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a write. Fields lists request-level problems and
// Issues lists variable definition problems found after reconciliation.
type ValidationError struct {
	Fields []FieldError      `json:"fields,omitempty"`
	Issues []variables.Issue `json:"issues,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Issues))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return "invalid prompt: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0 && len(e.Issues) == 0
}

func (e *ValidationError) field(name, message string) {
	e.Fields = append(e.Fields, FieldError{Field: name, Message: message})
}

// Service implements prompt operations on top of a Repository.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for write and reconciliation events.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides prompt id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService builds a prompt service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all prompts, most recently updated first.
func (s *Service) List(ctx context.Context) ([]core.Prompt, error) {
	return s.repo.ListPrompts(ctx)
}

// Get returns one prompt or core.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*core.Prompt, error) {
	return s.repo.GetPrompt(ctx, id)
}

// GetByName returns the prompt with the given unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*core.Prompt, error) {
	return s.repo.GetPromptByName(ctx, name)
}

// Resolve looks a prompt up by id, falling back to its name.
func (s *Service) Resolve(ctx context.Context, ref string) (*core.Prompt, error) {
	prompt, err := s.repo.GetPrompt(ctx, ref)
	if err == nil {
		return prompt, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.repo.GetPromptByName(ctx, ref)
}

// Create validates and stores a new prompt. The stored variable list is the
// reconciliation of the supplied definitions against the content.
func (s *Service) Create(ctx context.Context, in core.PromptInput) (*core.Prompt, error) {
	verr := &ValidationError{}

	name := checkName(verr, in.Name)
	checkContent(verr, in.Content)

	version := 1
	if in.Version != nil {
		version = *in.Version
		if version < 1 {
			verr.field("version", "must be at least 1")
		}
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	defs := s.reconcile(name, in.Content, variables.NormalizeAll(in.Variables))
	verr.Issues = variables.ValidateDefinitions(defs)
	if !verr.empty() {
		metrics.RecordPromptWrite("create", false)
		return nil, verr
	}

	now := s.now().UTC()
	prompt := core.Prompt{
		ID:        s.newID(),
		Name:      name,
		Content:   in.Content,
		Variables: defs,
		Metadata:  cloneMetadata(in.Metadata),
		Version:   version,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertPrompt(ctx, prompt); err != nil {
		metrics.RecordPromptWrite("create", false)
		return nil, err
	}

	metrics.RecordPromptWrite("create", true)
	s.info("Prompt created",
		zap.String("prompt_id", prompt.ID),
		zap.String("name", prompt.Name),
		zap.Int("variables", len(prompt.Variables)))
	return &prompt, nil
}

// Update applies a partial update. Content or variable changes re-run
// reconciliation; a content change bumps the version unless one is given.
func (s *Service) Update(ctx context.Context, id string, patch core.PromptPatch) (*core.Prompt, error) {
	existing, err := s.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	verr := &ValidationError{}

	if patch.Name != nil {
		updated.Name = checkName(verr, *patch.Name)
	}
	contentChanged := false
	if patch.Content != nil {
		checkContent(verr, *patch.Content)
		contentChanged = *patch.Content != existing.Content
		updated.Content = *patch.Content
	}
	if patch.Metadata != nil {
		updated.Metadata = cloneMetadata(patch.Metadata)
	}
	if patch.Active != nil {
		updated.Active = *patch.Active
	}

	switch {
	case patch.Version != nil:
		if *patch.Version < 1 {
			verr.field("version", "must be at least 1")
		}
		updated.Version = *patch.Version
	case contentChanged:
		updated.Version = existing.Version + 1
	}

	if contentChanged || patch.Variables != nil {
		base := existing.Variables
		if patch.Variables != nil {
			base = variables.NormalizeAll(*patch.Variables)
		}
		updated.Variables = s.reconcile(updated.Name, updated.Content, base)
		verr.Issues = variables.ValidateDefinitions(updated.Variables)
	}

	if !verr.empty() {
		metrics.RecordPromptWrite("update", false)
		return nil, verr
	}

	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdatePrompt(ctx, updated); err != nil {
		metrics.RecordPromptWrite("update", false)
		return nil, err
	}

	metrics.RecordPromptWrite("update", true)
	s.info("Prompt updated",
		zap.String("prompt_id", updated.ID),
		zap.Int("version", updated.Version),
		zap.Bool("content_changed", contentChanged))
	return &updated, nil
}

// Delete removes a prompt.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeletePrompt(ctx, id); err != nil {
		metrics.RecordPromptWrite("delete", false)
		return err
	}
	metrics.RecordPromptWrite("delete", true)
	s.info("Prompt deleted", zap.String("prompt_id", id))
	return nil
}

// Render renders a stored prompt with values. Issues are reported alongside
// the text and never prevent rendering.
func (s *Service) Render(ctx context.Context, id string, values variables.Values) (*RenderResult, error) {
	prompt, err := s.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, err
	}

	preview := Preview(prompt.Content, prompt.Variables, values)
	return &RenderResult{
		PromptID: prompt.ID,
		Name:     prompt.Name,
		Version:  prompt.Version,
		Preview:  preview,
	}, nil
}

// RenderResult is a rendered stored prompt.
type RenderResult struct {
	PromptID string `json:"promptId"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	variables.Preview
}

// reconcile re-derives definitions for content and logs the keys it drops.
func (s *Service) reconcile(name, content string, defs []variables.Definition) []variables.Definition {
	keys := variables.Extract(content)
	if dropped := variables.Dropped(defs, keys); len(dropped) > 0 {
		droppedKeys := make([]string, 0, len(dropped))
		for _, def := range dropped {
			droppedKeys = append(droppedKeys, def.Key)
		}
		s.debug("Dropped variables no longer referenced by content",
			zap.String("name", name),
			zap.Strings("keys", droppedKeys))
	}
	return variables.Reconcile(defs, keys)
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

func checkName(verr *ValidationError, raw string) string {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		verr.field("name", "is required")
	case utf8.RuneCountInString(name) > core.MaxPromptNameLength:
		verr.field("name", fmt.Sprintf("must be at most %d characters", core.MaxPromptNameLength))
	}
	return name
}

func checkContent(verr *ValidationError, content string) {
	if strings.TrimSpace(content) == "" {
		verr.field("content", "is required")
	}
}

func cloneMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
