package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// FormatPrompts renders one row per prompt.
func (f *TableFormatter) FormatPrompts(list []core.Prompt) (string, error) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Version", "Status", "Variables", "Updated"})
	for i := range list {
		p := &list[i]
		t.AppendRow(table.Row{
			p.ID,
			p.Name,
			p.Version,
			activeLabel(p.Active),
			variableKeys(p.Variables),
			formatTime(p.UpdatedAt),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d prompts", len(list)), "", "", "", ""})
	return t.Render(), nil
}

// FormatPrompt renders prompt details, its variables and its content.
func (f *TableFormatter) FormatPrompt(prompt *core.Prompt) (string, error) {
	if prompt == nil {
		return "", nil
	}

	t := newTable()
	t.AppendRow(table.Row{"ID", prompt.ID})
	t.AppendRow(table.Row{"Name", prompt.Name})
	if desc := description(prompt); desc != "" {
		t.AppendRow(table.Row{"Description", desc})
	}
	t.AppendRow(table.Row{"Version", prompt.Version})
	t.AppendRow(table.Row{"Status", activeLabel(prompt.Active)})
	t.AppendRow(table.Row{"Created", formatTime(prompt.CreatedAt)})
	t.AppendRow(table.Row{"Updated", formatTime(prompt.UpdatedAt)})

	var sb strings.Builder
	sb.WriteString(t.Render())
	if len(prompt.Variables) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(definitionTable(prompt.Variables))
	}
	sb.WriteString("\n\n")
	sb.WriteString(prompt.Content)
	return sb.String(), nil
}

// FormatVariables renders the placeholders of a template, their
// definitions and any definition issues.
func (f *TableFormatter) FormatVariables(keys []string, defs []variables.Definition, issues []variables.Issue) (string, error) {
	placeholders := "none"
	if len(keys) > 0 {
		placeholders = strings.Join(keys, ", ")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Placeholders: %s\n\n", placeholders))
	sb.WriteString(definitionTable(defs))
	if len(issues) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(issueTable(issues))
	}
	return sb.String(), nil
}

// FormatRender renders the text followed by the issues reported for it.
func (f *TableFormatter) FormatRender(result *prompts.RenderResult) (string, error) {
	if result == nil {
		return "", nil
	}
	if len(result.Issues) == 0 {
		return result.Text, nil
	}
	return result.Text + "\n\n" + issueTable(result.Issues), nil
}

// FormatMcpConfigs renders one row per stored MCP server configuration.
func (f *TableFormatter) FormatMcpConfigs(list []core.McpConfig) (string, error) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Transport", "Endpoint", "Timeout", "Status", "Tools"})
	for _, cfg := range list {
		t.AppendRow(table.Row{
			cfg.ID,
			cfg.Name,
			string(cfg.Config.Transport),
			truncate(endpoint(cfg.Config), previewWidth),
			fmt.Sprintf("%ds", cfg.Config.Timeout),
			enabledLabel(cfg.Config.Disabled),
			toolNames(cfg.Config.Tools),
		})
	}
	return t.Render(), nil
}

// FormatImport renders the outcome of an import per prompt name.
func (f *TableFormatter) FormatImport(result *prompts.ImportResult) (string, error) {
	if result == nil {
		return "", nil
	}
	t := newTable()
	t.AppendHeader(table.Row{"Name", "Outcome"})
	for _, name := range result.Created {
		t.AppendRow(table.Row{name, "created"})
	}
	for _, name := range result.Updated {
		t.AppendRow(table.Row{name, "updated"})
	}
	for _, name := range result.Skipped {
		t.AppendRow(table.Row{name, "skipped"})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d created, %d updated, %d skipped",
		len(result.Created), len(result.Updated), len(result.Skipped))})
	return t.Render(), nil
}

func definitionTable(defs []variables.Definition) string {
	t := newTable()
	t.AppendHeader(table.Row{"Key", "Type", "Required", "Options / Default", "Description"})
	for _, def := range defs {
		t.AppendRow(table.Row{
			def.Key,
			string(def.Type),
			requiredLabel(def.Required),
			optionsOrDefault(def),
			truncate(def.Description, previewWidth),
		})
	}
	return t.Render()
}

func issueTable(issues []variables.Issue) string {
	t := newTable()
	t.AppendHeader(table.Row{"Variable", "Issue", "Message"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.Key, issueCode(issue), issue.Message})
	}
	return t.Render()
}
