package prompts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

const sampleFile = `---
name: release-notes
description: Draft release notes
version: 3
metadata:
  category: writing
variables:
  - key: product
  - key: tone
    type: select
    options: [formal, casual]
    default: formal
    required: false
---
Write {{tone}} release notes for {{product}}.
`

func TestParseFile(t *testing.T) {
	t.Run("Frontmatter", func(t *testing.T) {
		file, err := ParseFile("prompts/release.md", []byte(sampleFile))
		require.NoError(t, err)

		assert.Equal(t, "release-notes", file.Name)
		assert.Equal(t, "Write {{tone}} release notes for {{product}}.", file.Content)
		assert.Equal(t, 3, file.Version)
		require.Len(t, file.Variables, 2)
		assert.Equal(t, variables.NewDefinition("product"), file.Variables[0])
		assert.Equal(t, variables.Definition{
			Key:          "tone",
			Type:         variables.TypeSelect,
			Options:      []string{"formal", "casual"},
			DefaultValue: "formal",
		}, file.Variables[1])

		in := file.Input()
		assert.Equal(t, "Draft release notes", in.Metadata["description"])
		assert.Equal(t, "writing", in.Metadata["category"])
		require.NotNil(t, in.Version)
		assert.Equal(t, 3, *in.Version)
		assert.Nil(t, in.Active)
	})

	t.Run("PlainMarkdownUsesFileName", func(t *testing.T) {
		file, err := ParseFile("/tmp/standup.md", []byte("\n# Standup\n\nYesterday I {{done}}.\n"))
		require.NoError(t, err)
		assert.Equal(t, "standup", file.Name)
		assert.Equal(t, "# Standup\n\nYesterday I {{done}}.", file.Content)
		assert.Empty(t, file.Variables)

		in := file.Input()
		assert.Nil(t, in.Metadata)
		assert.Nil(t, in.Version)
	})

	t.Run("DashesInBodyAreContent", func(t *testing.T) {
		file, err := ParseFile("notes.md", []byte("Intro\n---\nMore"))
		require.NoError(t, err)
		assert.Equal(t, "Intro\n---\nMore", file.Content)
	})

	t.Run("Errors", func(t *testing.T) {
		cases := map[string]string{
			"empty":        "   \n",
			"unterminated": "---\nname: x\nbody",
			"no content":   "---\nname: x\n---\n\n",
			"bad yaml":     "---\nname: [x\n---\nbody",
		}
		for name, data := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := ParseFile("x.md", []byte(data))
				require.Error(t, err)
			})
		}
	})
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "release.md"), []byte(sampleFile), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"), []byte("Hello {{name}}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("nope"), 0o600))

	files, err := LoadPath(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	single, err := LoadPath(filepath.Join(dir, "hello.md"))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "hello", single[0].Name)

	_, err = LoadPath(filepath.Join(dir, "missing.md"))
	require.Error(t, err)
}

func TestLibrary(t *testing.T) {
	a := &File{Frontmatter: Frontmatter{Name: "b"}, Content: "x", Source: "one.md"}
	b := &File{Frontmatter: Frontmatter{Name: "a"}, Content: "y", Source: "two.md"}

	lib, err := NewLibrary([]*File{a, nil, b})
	require.NoError(t, err)

	list := lib.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)

	got, err := lib.Get(" b ")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = lib.Get("c")
	require.Error(t, err)

	_, err = NewLibrary([]*File{a, {Frontmatter: Frontmatter{Name: "b"}, Source: "three.md"}})
	require.ErrorContains(t, err, "duplicate prompt name")

	var empty *Library
	assert.Nil(t, empty.List())
}

func TestBuiltinLibrary(t *testing.T) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, file := range lib.List() {
		names = append(names, file.Name)
		defs := variables.Reconcile(variables.NormalizeAll(file.Variables), variables.Extract(file.Content))
		assert.Empty(t, variables.ValidateDefinitions(defs), file.Name)
	}
	assert.Equal(t, []string{"code-review", "email-reply", "summarize", "translate"}, names)
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedBuiltinIsIdempotent", func(t *testing.T) {
		svc, repo := newTestService(t)

		first, err := svc.SeedBuiltin(ctx)
		require.NoError(t, err)
		assert.Len(t, first.Created, 4)
		assert.Empty(t, first.Skipped)
		assert.Len(t, repo.prompts, 4)

		second, err := svc.SeedBuiltin(ctx)
		require.NoError(t, err)
		assert.Empty(t, second.Created)
		assert.Len(t, second.Skipped, 4)
	})

	t.Run("ReplaceUpdatesExisting", func(t *testing.T) {
		svc, _ := newTestService(t)

		original, err := ParseFile("hello.md", []byte("Hello {{name}}"))
		require.NoError(t, err)
		_, err = svc.Import(ctx, []*File{original}, ImportSkipExisting)
		require.NoError(t, err)

		revised, err := ParseFile("hello.md", []byte("Hello {{name}} and {{friend}}"))
		require.NoError(t, err)

		skipped, err := svc.Import(ctx, []*File{revised}, ImportSkipExisting)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello"}, skipped.Skipped)

		replaced, err := svc.Import(ctx, []*File{revised}, ImportReplace)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello"}, replaced.Updated)

		stored, err := svc.GetByName(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Version)
		require.Len(t, stored.Variables, 2)
		assert.Equal(t, "friend", stored.Variables[1].Key)
	})

	t.Run("StopsOnInvalidFile", func(t *testing.T) {
		svc, _ := newTestService(t)

		bad := &File{
			Frontmatter: Frontmatter{
				Name:      "broken",
				Variables: []variables.Definition{{Key: "pick", Type: variables.TypeSelect}},
			},
			Content: "Pick {{pick}}",
			Source:  "broken.md",
		}
		result, err := svc.Import(ctx, []*File{bad}, ImportSkipExisting)
		require.Error(t, err)
		validationError(t, err)
		assert.Empty(t, result.Created)
	})
}
