package prompts

import (
	"time"

	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
	"github.com/mkashifaslam/prompt-studio/internal/metrics"
)

// SyncResult is the reconciled definition list for a piece of content plus
// the definitions reconciliation discarded.
type SyncResult struct {
	Keys      []string               `json:"keys"`
	Variables []variables.Definition `json:"variables"`
	Dropped   []variables.Definition `json:"dropped"`
}

// Extract returns the placeholder keys of content.
func Extract(content string) []string {
	start := time.Now()
	keys := variables.Extract(content)
	metrics.RecordTemplateOperation("extract", 0, time.Since(start))
	return keys
}

// Sync reconciles defs against the placeholders of content.
func Sync(content string, defs []variables.Definition) SyncResult {
	start := time.Now()

	defs = variables.NormalizeAll(defs)
	keys := variables.Extract(content)
	dropped := variables.Dropped(defs, keys)
	if dropped == nil {
		dropped = []variables.Definition{}
	}
	result := SyncResult{
		Keys:      keys,
		Variables: variables.Reconcile(defs, keys),
		Dropped:   dropped,
	}

	metrics.RecordTemplateOperation("sync", 0, time.Since(start))
	return result
}

// Preview renders content with defs and values and reports every issue.
func Preview(content string, defs []variables.Definition, values variables.Values) variables.Preview {
	start := time.Now()
	preview := variables.RenderPreview(content, variables.NormalizeAll(defs), values)
	metrics.RecordTemplateOperation("preview", len(preview.Issues), time.Since(start))
	return preview
}
