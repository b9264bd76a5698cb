package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

func samplePrompt() core.Prompt {
	return core.Prompt{
		ID:      "p-1",
		Name:    "greeting",
		Content: "Hello {{name}}, tone {{tone}}",
		Variables: []variables.Definition{
			{Key: "name", Type: variables.TypeString, Required: true},
			{Key: "tone", Type: variables.TypeSelect, Options: []string{"formal", "casual"}, DefaultValue: "formal"},
		},
		Metadata:  map[string]any{"description": "Say hello"},
		Version:   2,
		Active:    true,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	}
}

func sampleMcp() core.McpConfig {
	return core.McpConfig{
		ID:   "m-1",
		Name: "filesystem",
		Config: core.McpServer{
			Name:      "filesystem",
			Transport: core.McpTransportStdio,
			Command:   "npx",
			Args:      []string{"-y", "server-filesystem"},
			Timeout:   30,
			Tools:     []core.McpTool{{Name: "write"}, {Name: "read"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	f := NewFormatter(FormatTable)
	prompt := samplePrompt()

	list, err := f.FormatPrompts([]core.Prompt{prompt})
	require.NoError(t, err)
	assert.Contains(t, list, "greeting")
	assert.Contains(t, list, "name*, tone")
	assert.Contains(t, list, "1 PROMPTS")

	detail, err := f.FormatPrompt(&prompt)
	require.NoError(t, err)
	assert.Contains(t, detail, "Say hello")
	assert.Contains(t, detail, "formal | casual; default: formal")
	assert.True(t, strings.HasSuffix(detail, prompt.Content))

	mcp, err := f.FormatMcpConfigs([]core.McpConfig{sampleMcp()})
	require.NoError(t, err)
	assert.Contains(t, mcp, "npx -y server-filesystem")
	assert.Contains(t, mcp, "read, write")
	assert.Contains(t, mcp, "30s")

	imported, err := f.FormatImport(&prompts.ImportResult{Created: []string{"a"}, Skipped: []string{"b"}})
	require.NoError(t, err)
	assert.Contains(t, imported, "1 CREATED, 0 UPDATED, 1 SKIPPED")
}

func TestTableFormatterVariables(t *testing.T) {
	f := &TableFormatter{}

	rendered, err := f.FormatVariables(nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Placeholders: none")

	rendered, err = f.FormatVariables(
		[]string{"tone"},
		[]variables.Definition{{Key: "tone", Type: variables.TypeSelect}},
		[]variables.Issue{{Key: "tone", Code: variables.CodeSelectNoOptions, Message: "select variables must have options"}},
	)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Placeholders: tone")
	assert.Contains(t, rendered, string(variables.CodeSelectNoOptions))
}

func TestRenderOutput(t *testing.T) {
	clean := &prompts.RenderResult{Name: "greeting", Preview: variables.Preview{Text: "Hello Ada", Issues: []variables.Issue{}, Valid: true}}
	flagged := &prompts.RenderResult{Name: "greeting", Preview: variables.Preview{
		Text:   "Hello [name]",
		Issues: []variables.Issue{{Key: "name", Code: variables.CodeRequired, Message: "value is required"}},
	}}

	for _, format := range []Format{FormatTable, FormatMarkdown} {
		f := NewFormatter(format)

		rendered, err := f.FormatRender(clean)
		require.NoError(t, err)
		assert.Equal(t, "Hello Ada", rendered)

		rendered, err = f.FormatRender(flagged)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(rendered, "Hello [name]"))
		assert.Contains(t, rendered, "required")
	}
}

func TestJSONFormatter(t *testing.T) {
	f := NewFormatter(FormatJSON)

	rendered, err := f.FormatPrompts(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", rendered)

	prompt := samplePrompt()
	rendered, err = f.FormatPrompt(&prompt)
	require.NoError(t, err)
	var decoded core.Prompt
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, prompt.Name, decoded.Name)
	assert.Len(t, decoded.Variables, 2)

	rendered, err = f.FormatVariables([]string{"a"}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, rendered, `"variables": []`)
	assert.Contains(t, rendered, `"issues": []`)
}

func TestMarkdownEscaping(t *testing.T) {
	f := &MarkdownFormatter{}
	prompt := samplePrompt()
	prompt.Name = "a|b"

	rendered, err := f.FormatPrompts([]core.Prompt{prompt})
	require.NoError(t, err)
	assert.Contains(t, rendered, `a\|b`)

	rendered, err = f.FormatPrompt(&prompt)
	require.NoError(t, err)
	assert.Contains(t, rendered, "```\n"+prompt.Content+"\n```")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
