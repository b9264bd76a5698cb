package variables

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{key}} tokens; the key is trimmed after matching.
var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Extract returns the unique placeholder keys of text in first-occurrence
// order. Unterminated or empty placeholders are skipped.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}

	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	keys := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		key := strings.TrimSpace(match[1])
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
