package metrics

import (
	"strconv"
	"time"
)

// Template engine and record write metrics
const (
	TemplateOperationsTotal   = "template_operations_total"
	TemplateOperationDuration = "template_operation_duration_ms"
	TemplateLastIssueCount    = "template_last_issue_count"
	PromptWritesTotal         = "prompt_writes_total"
	McpConfigWritesTotal      = "mcp_config_writes_total"
)

// RecordTemplateOperation records an extract, sync, preview or render call
// together with the number of issues it reported.
func RecordTemplateOperation(operation string, issues int, duration time.Duration) {
	labels := map[string]string{"operation": operation}
	counter(TemplateOperationsTotal, map[string]string{
		"operation": operation,
		"valid":     strconv.FormatBool(issues == 0),
	})
	histogram(TemplateOperationDuration, duration, labels)
	gauge(TemplateLastIssueCount, float64(issues), labels)
}

// RecordPromptWrite records a prompt create, update, delete or import.
func RecordPromptWrite(action string, success bool) {
	counter(PromptWritesTotal, map[string]string{"action": action, "success": outcome(success)})
}

// RecordMcpConfigWrite records an MCP configuration upsert or delete.
func RecordMcpConfigWrite(action string, success bool) {
	counter(McpConfigWritesTotal, map[string]string{"action": action, "success": outcome(success)})
}
