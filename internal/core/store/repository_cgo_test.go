//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{
		Driver: "libsql",
		Path:   "file:" + t.TempDir() + "/promptstudio.db",
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "migrations are idempotent")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPromptCRUD(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	prompt := core.Prompt{
		ID:      "p-1",
		Name:    "greeting",
		Content: "Hi {{name}}, you are {{age}}",
		Variables: []variables.Definition{
			{Key: "name", Required: true, Type: variables.TypeString, DefaultValue: "there"},
			{Key: "age", Required: false, Type: variables.TypeNumber},
		},
		Metadata:  map[string]any{"owner": "docs"},
		Version:   1,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.InsertPrompt(ctx, prompt))

	dup := prompt
	dup.ID = "p-2"
	require.ErrorIs(t, store.InsertPrompt(ctx, dup), ErrConflict)

	got, err := store.GetPrompt(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, prompt, *got)

	got.Content = "Hello {{name}}"
	got.Variables = got.Variables[:1]
	got.Version = 2
	got.Active = false
	got.UpdatedAt = now.Add(time.Second)
	require.NoError(t, store.UpdatePrompt(ctx, *got))

	byName, err := store.GetPromptByName(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, 2, byName.Version)
	require.False(t, byName.Active)
	require.Len(t, byName.Variables, 1)
	require.Equal(t, now, byName.CreatedAt)

	other := prompt
	other.ID = "p-3"
	other.Name = "farewell"
	other.UpdatedAt = now.Add(2 * time.Second)
	require.NoError(t, store.InsertPrompt(ctx, other))

	list, err := store.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "farewell", list[0].Name)

	count, err := store.CountPrompts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, store.DeletePrompt(ctx, "p-1"))
	_, err = store.GetPrompt(ctx, "p-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.DeletePrompt(ctx, "p-1"), ErrNotFound)
}

func TestMcpConfigUpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := time.Now().UTC().Truncate(time.Millisecond)
	saved, err := store.UpsertMcpConfig(ctx, core.McpConfig{
		ID:        "m-1",
		Name:      "filesystem",
		Config:    core.McpServer{Name: "filesystem", Transport: core.McpTransportStdio, Command: "npx", Timeout: 30},
		CreatedAt: first,
		UpdatedAt: first,
	})
	require.NoError(t, err)
	require.Equal(t, "m-1", saved.ID)

	second := first.Add(time.Minute)
	saved, err = store.UpsertMcpConfig(ctx, core.McpConfig{
		ID:        "m-2",
		Name:      "filesystem",
		Config:    core.McpServer{Name: "filesystem", Transport: core.McpTransportStdio, Command: "uvx", Timeout: 45},
		CreatedAt: second,
		UpdatedAt: second,
	})
	require.NoError(t, err)
	require.Equal(t, "m-1", saved.ID)
	require.Equal(t, first, saved.CreatedAt)
	require.Equal(t, second, saved.UpdatedAt)
	require.Equal(t, "uvx", saved.Config.Command)

	records, err := store.ListMcpConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, store.DeleteMcpConfig(ctx, "m-1"))
	_, err = store.GetMcpConfigByName(ctx, "filesystem")
	require.ErrorIs(t, err, ErrNotFound)
}
