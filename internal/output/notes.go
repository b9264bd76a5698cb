package output

import (
	"sort"
	"strings"
	"time"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

const previewWidth = 60

// description returns the prompt description kept in metadata, if any.
func description(prompt *core.Prompt) string {
	if prompt == nil || prompt.Metadata == nil {
		return ""
	}
	value, _ := prompt.Metadata["description"].(string)
	return strings.TrimSpace(value)
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func enabledLabel(disabled bool) string {
	if disabled {
		return "disabled"
	}
	return "enabled"
}

func requiredLabel(required bool) string {
	if required {
		return "yes"
	}
	return ""
}

func variableKeys(defs []variables.Definition) string {
	if len(defs) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		key := def.Key
		if def.Required {
			key += "*"
		}
		keys = append(keys, key)
	}
	return strings.Join(keys, ", ")
}

// optionsOrDefault summarizes the select options or the default value.
func optionsOrDefault(def variables.Definition) string {
	var parts []string
	if len(def.Options) > 0 {
		parts = append(parts, strings.Join(def.Options, " | "))
	}
	if def.DefaultValue != "" {
		parts = append(parts, "default: "+def.DefaultValue)
	}
	return strings.Join(parts, "; ")
}

// endpoint is the command line or URL used to reach an MCP server.
func endpoint(server core.McpServer) string {
	if server.Transport == core.McpTransportStdio || server.Transport == "" {
		return strings.TrimSpace(strings.Join(append([]string{server.Command}, server.Args...), " "))
	}
	return server.BaseURL
}

func toolNames(tools []core.McpTool) string {
	if len(tools) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func issueCode(issue variables.Issue) string {
	return string(issue.Code)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// truncate shortens value to width runes on a single line.
func truncate(value string, width int) string {
	flat := strings.Join(strings.Fields(value), " ")
	runes := []rune(flat)
	if len(runes) <= width {
		return flat
	}
	return string(runes[:width-1]) + "…"
}
