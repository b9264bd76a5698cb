package output

import (
	"encoding/json"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// JSONFormatter renders results as JSON using the REST API shapes.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) encode(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// FormatPrompts renders the prompt list.
func (f *JSONFormatter) FormatPrompts(list []core.Prompt) (string, error) {
	if list == nil {
		list = []core.Prompt{}
	}
	return f.encode(list)
}

// FormatPrompt renders a single prompt.
func (f *JSONFormatter) FormatPrompt(prompt *core.Prompt) (string, error) {
	if prompt == nil {
		return "", nil
	}
	return f.encode(prompt)
}

// FormatVariables renders keys, definitions and issues as one object.
func (f *JSONFormatter) FormatVariables(keys []string, defs []variables.Definition, issues []variables.Issue) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	if defs == nil {
		defs = []variables.Definition{}
	}
	if issues == nil {
		issues = []variables.Issue{}
	}
	return f.encode(struct {
		Keys      []string               `json:"keys"`
		Variables []variables.Definition `json:"variables"`
		Issues    []variables.Issue      `json:"issues"`
	}{keys, defs, issues})
}

// FormatRender renders a render result.
func (f *JSONFormatter) FormatRender(result *prompts.RenderResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.encode(result)
}

// FormatMcpConfigs renders the MCP configuration list.
func (f *JSONFormatter) FormatMcpConfigs(list []core.McpConfig) (string, error) {
	if list == nil {
		list = []core.McpConfig{}
	}
	return f.encode(list)
}

// FormatImport renders an import result.
func (f *JSONFormatter) FormatImport(result *prompts.ImportResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.encode(result)
}
