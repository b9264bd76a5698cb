package output

import (
	"fmt"
	"strings"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// FormatPrompts renders the prompt list as a markdown table.
func (f *MarkdownFormatter) FormatPrompts(list []core.Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Name | Version | Status | Variables |\n")
	sb.WriteString("|------|---------|--------|-----------|\n")
	for i := range list {
		p := &list[i]
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			escapeMarkdownCell(p.Name),
			p.Version,
			activeLabel(p.Active),
			escapeMarkdownCell(variableKeys(p.Variables)),
		))
	}
	return sb.String(), nil
}

// FormatPrompt renders a prompt as a markdown section.
func (f *MarkdownFormatter) FormatPrompt(prompt *core.Prompt) (string, error) {
	if prompt == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (v%d, %s)\n\n", prompt.Name, prompt.Version, activeLabel(prompt.Active)))
	if desc := description(prompt); desc != "" {
		sb.WriteString(desc + "\n\n")
	}
	if len(prompt.Variables) > 0 {
		sb.WriteString(definitionMarkdown(prompt.Variables))
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	sb.WriteString(prompt.Content)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

// FormatVariables renders definitions and issues as markdown tables.
func (f *MarkdownFormatter) FormatVariables(keys []string, defs []variables.Definition, issues []variables.Issue) (string, error) {
	var sb strings.Builder
	sb.WriteString(definitionMarkdown(defs))
	if len(issues) > 0 {
		sb.WriteString("\n")
		sb.WriteString(issueMarkdown(issues))
	}
	return sb.String(), nil
}

// FormatRender renders the text with an issue table when needed.
func (f *MarkdownFormatter) FormatRender(result *prompts.RenderResult) (string, error) {
	if result == nil {
		return "", nil
	}
	if len(result.Issues) == 0 {
		return result.Text, nil
	}
	return result.Text + "\n\n" + issueMarkdown(result.Issues), nil
}

// FormatMcpConfigs renders MCP configurations as a markdown table.
func (f *MarkdownFormatter) FormatMcpConfigs(list []core.McpConfig) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Name | Transport | Endpoint | Status |\n")
	sb.WriteString("|------|-----------|----------|--------|\n")
	for _, cfg := range list {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(cfg.Name),
			cfg.Config.Transport,
			escapeMarkdownCell(endpoint(cfg.Config)),
			enabledLabel(cfg.Config.Disabled),
		))
	}
	return sb.String(), nil
}

// FormatImport renders an import summary.
func (f *MarkdownFormatter) FormatImport(result *prompts.ImportResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return fmt.Sprintf("**Imported**: %d created, %d updated, %d skipped\n",
		len(result.Created), len(result.Updated), len(result.Skipped)), nil
}

func definitionMarkdown(defs []variables.Definition) string {
	var sb strings.Builder
	sb.WriteString("| Key | Type | Required | Options / Default |\n")
	sb.WriteString("|-----|------|----------|-------------------|\n")
	for _, def := range defs {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(def.Key),
			def.Type,
			requiredLabel(def.Required),
			escapeMarkdownCell(optionsOrDefault(def)),
		))
	}
	return sb.String()
}

func issueMarkdown(issues []variables.Issue) string {
	var sb strings.Builder
	sb.WriteString("| Variable | Issue | Message |\n")
	sb.WriteString("|----------|-------|---------|\n")
	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			escapeMarkdownCell(issue.Key),
			issue.Code,
			escapeMarkdownCell(issue.Message),
		))
	}
	return sb.String()
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
