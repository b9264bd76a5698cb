package prompts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

type memRepo struct {
	mu      sync.Mutex
	prompts map[string]core.Prompt
}

func newMemRepo() *memRepo {
	return &memRepo{prompts: map[string]core.Prompt{}}
}

func (r *memRepo) ListPrompts(context.Context) ([]core.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memRepo) GetPrompt(_ context.Context, id string) (*core.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prompts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (r *memRepo) GetPromptByName(_ context.Context, name string) (*core.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prompts {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *memRepo) InsertPrompt(_ context.Context, prompt core.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prompts {
		if p.Name == prompt.Name {
			return fmt.Errorf("prompt %q: %w", prompt.Name, core.ErrConflict)
		}
	}
	r.prompts[prompt.ID] = prompt
	return nil
}

func (r *memRepo) UpdatePrompt(_ context.Context, prompt core.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[prompt.ID]; !ok {
		return core.ErrNotFound
	}
	for id, p := range r.prompts {
		if id != prompt.ID && p.Name == prompt.Name {
			return core.ErrConflict
		}
	}
	r.prompts[prompt.ID] = prompt
	return nil
}

func (r *memRepo) DeletePrompt(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.prompts, id)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()

	logger, err := logging.NewCLI("promptstudio-test")
	require.NoError(t, err)

	repo := newMemRepo()
	clock := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	svc := NewService(repo,
		WithLogger(logger),
		WithClock(clock.now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("prompt-%d", n)
		}))
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("ReconcilesAgainstContent", func(t *testing.T) {
		svc, _ := newTestService(t)

		prompt, err := svc.Create(ctx, core.PromptInput{
			Name:    "  intro  ",
			Content: "Hi {{name}}, you are {{ age }}",
			Variables: []variables.Definition{
				{Key: "age", Type: "Number", Required: false, Description: "years"},
				{Key: "stale", Type: variables.TypeString},
			},
			Metadata: map[string]any{"team": "docs"},
		})
		require.NoError(t, err)

		assert.Equal(t, "prompt-1", prompt.ID)
		assert.Equal(t, "intro", prompt.Name)
		assert.Equal(t, 1, prompt.Version)
		assert.True(t, prompt.Active)
		assert.Equal(t, "docs", prompt.Metadata["team"])
		assert.Equal(t, prompt.CreatedAt, prompt.UpdatedAt)
		assert.Equal(t, []variables.Definition{
			variables.NewDefinition("name"),
			{Key: "age", Type: variables.TypeNumber, Required: false, Description: "years"},
		}, prompt.Variables)
	})

	t.Run("ExplicitVersionAndActive", func(t *testing.T) {
		svc, _ := newTestService(t)

		prompt, err := svc.Create(ctx, core.PromptInput{
			Name:    "draft",
			Content: "plain text",
			Version: ptr(4),
			Active:  ptr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, 4, prompt.Version)
		assert.False(t, prompt.Active)
		assert.Empty(t, prompt.Variables)
		assert.NotNil(t, prompt.Metadata)
	})

	t.Run("RequiredFields", func(t *testing.T) {
		svc, repo := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{Name: " ", Content: "  ", Version: ptr(0)})
		verr := validationError(t, err)

		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.Equal(t, []string{"name", "content", "version"}, fields)
		assert.Empty(t, repo.prompts)
	})

	t.Run("NameTooLong", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{Name: strings.Repeat("n", core.MaxPromptNameLength+1), Content: "x"})
		verr := validationError(t, err)
		require.Len(t, verr.Fields, 1)
		assert.Contains(t, verr.Fields[0].Message, "160")
	})

	t.Run("SelectWithoutOptions", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{
			Name:      "tone",
			Content:   "Use a {{tone}} tone",
			Variables: []variables.Definition{{Key: "tone", Type: variables.TypeSelect}},
		})
		verr := validationError(t, err)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, variables.CodeSelectNoOptions, verr.Issues[0].Code)
	})

	t.Run("StaleDefinitionsDoNotBlock", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{
			Name:      "clean",
			Content:   "Hello {{who}}",
			Variables: []variables.Definition{{Key: "gone", Type: variables.TypeSelect}},
		})
		require.NoError(t, err)
	})

	t.Run("InvalidPlaceholderKey", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{Name: "bad", Content: "Hi {{first name}}"})
		verr := validationError(t, err)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, variables.CodeInvalidKey, verr.Issues[0].Code)
		assert.Equal(t, "first name", verr.Issues[0].Key)
		assert.Contains(t, verr.Error(), "first name")
	})

	t.Run("DuplicateName", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, core.PromptInput{Name: "dup", Content: "a"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, core.PromptInput{Name: "dup", Content: "b"})
		require.ErrorIs(t, err, core.ErrConflict)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Service, *core.Prompt) {
		svc, _ := newTestService(t)
		prompt, err := svc.Create(ctx, core.PromptInput{
			Name:    "greeting",
			Content: "Hi {{name}}",
			Variables: []variables.Definition{
				{Key: "name", Type: variables.TypeString, DefaultValue: "there", Required: false},
			},
		})
		require.NoError(t, err)
		return svc, prompt
	}

	t.Run("ContentChangeBumpsVersionAndReconciles", func(t *testing.T) {
		svc, original := seed(t)

		updated, err := svc.Update(ctx, original.ID, core.PromptPatch{
			Content: ptr("Hi {{name}} from {{city}}"),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(original.UpdatedAt))
		assert.Equal(t, []variables.Definition{
			original.Variables[0],
			variables.NewDefinition("city"),
		}, updated.Variables)
	})

	t.Run("SameContentKeepsVersion", func(t *testing.T) {
		svc, original := seed(t)

		updated, err := svc.Update(ctx, original.ID, core.PromptPatch{Content: ptr(original.Content)})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Version)
	})

	t.Run("MetadataOnly", func(t *testing.T) {
		svc, original := seed(t)

		updated, err := svc.Update(ctx, original.ID, core.PromptPatch{
			Metadata: map[string]any{"owner": "ops"},
			Active:   ptr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Version)
		assert.False(t, updated.Active)
		assert.Equal(t, "ops", updated.Metadata["owner"])
		assert.Equal(t, original.Variables, updated.Variables)
	})

	t.Run("ReplacingVariablesIsReconciled", func(t *testing.T) {
		svc, original := seed(t)

		updated, err := svc.Update(ctx, original.ID, core.PromptPatch{
			Variables: &[]variables.Definition{
				{Key: "name", Type: variables.TypeSelect, Options: []string{"Ann", "Bob"}, Required: true},
				{Key: "unused"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Version)
		require.Len(t, updated.Variables, 1)
		assert.Equal(t, variables.TypeSelect, updated.Variables[0].Type)
	})

	t.Run("ExplicitVersionWins", func(t *testing.T) {
		svc, original := seed(t)

		updated, err := svc.Update(ctx, original.ID, core.PromptPatch{Content: ptr("Yo {{name}}"), Version: ptr(10)})
		require.NoError(t, err)
		assert.Equal(t, 10, updated.Version)
	})

	t.Run("InvalidPatch", func(t *testing.T) {
		svc, original := seed(t)

		_, err := svc.Update(ctx, original.ID, core.PromptPatch{Name: ptr(""), Content: ptr(" ")})
		verr := validationError(t, err)
		assert.Len(t, verr.Fields, 2)

		stored, err := svc.Get(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.Content, stored.Content)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, _ := seed(t)

		_, err := svc.Update(ctx, "missing", core.PromptPatch{Name: ptr("x")})
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestDeleteAndResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	prompt, err := svc.Create(ctx, core.PromptInput{Name: "bye", Content: "Bye {{name}}"})
	require.NoError(t, err)

	byName, err := svc.Resolve(ctx, "bye")
	require.NoError(t, err)
	assert.Equal(t, prompt.ID, byName.ID)

	byID, err := svc.Resolve(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", byID.Name)

	require.NoError(t, svc.Delete(ctx, prompt.ID))
	require.ErrorIs(t, svc.Delete(ctx, prompt.ID), core.ErrNotFound)

	_, err = svc.Resolve(ctx, "bye")
	require.ErrorIs(t, err, core.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	prompt, err := svc.Create(ctx, core.PromptInput{
		Name:    "greeting",
		Content: "Hi {{name}}! You have {{count}} messages.",
		Variables: []variables.Definition{
			{Key: "name", DefaultValue: "there", Required: false, Type: variables.TypeString},
			{Key: "count", Type: variables.TypeNumber, Required: true},
		},
	})
	require.NoError(t, err)

	result, err := svc.Render(ctx, prompt.ID, variables.Values{"count": "3"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there! You have 3 messages.", result.Text)
	assert.True(t, result.Valid)
	assert.Equal(t, prompt.ID, result.PromptID)
	assert.Equal(t, 1, result.Version)

	result, err = svc.Render(ctx, prompt.ID, variables.Values{"name": "Sam", "count": "many"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Sam! You have many messages.", result.Text)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, variables.CodeNotANumber, result.Issues[0].Code)

	_, err = svc.Render(ctx, "missing", nil)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestStatelessHelpers(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Extract("{{b}} {{a}} {{b}}"))

	result := Sync("{{x}} {{y}}", []variables.Definition{
		{Key: "x", Type: "BOOLEAN", Options: []string{"ignored"}},
		{Key: "z"},
	})
	assert.Equal(t, []string{"x", "y"}, result.Keys)
	assert.Equal(t, []variables.Definition{
		{Key: "x", Type: variables.TypeBoolean},
		variables.NewDefinition("y"),
	}, result.Variables)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "z", result.Dropped[0].Key)

	none := Sync("{{x}}", nil)
	assert.NotNil(t, none.Dropped)

	preview := Preview("Hi {{name}}!", []variables.Definition{{Key: "name", Type: variables.TypeString}}, nil)
	assert.Equal(t, "Hi [name]!", preview.Text)
	assert.True(t, preview.Valid)
}
