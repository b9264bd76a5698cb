package variables

import "strings"

// Fallback returns the marker rendered for a variable with no value or default.
func Fallback(key string) string {
	return "[" + key + "]"
}

// Resolve returns the substitution value for def: the supplied value when
// non-empty, else the declared default, else the fallback marker.
func Resolve(def Definition, values Values) string {
	if value, ok := values.lookup(def.Key); ok && value != "" {
		return value
	}
	if def.DefaultValue != "" {
		return def.DefaultValue
	}
	return Fallback(def.Key)
}

// Render substitutes every placeholder of a defined variable in a single
// left-to-right pass. Substituted values are never re-scanned, and
// placeholders without a definition are left as written. Whitespace inside
// the braces is trimmed, so {{ name }} is substituted like {{name}}.
func Render(text string, defs []Definition, values Values) string {
	if text == "" || len(defs) == 0 {
		return text
	}

	substitutions := make(map[string]string, len(defs))
	for _, def := range defs {
		if _, ok := substitutions[def.Key]; ok {
			continue
		}
		substitutions[def.Key] = Resolve(def, values)
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := strings.TrimSpace(token[2 : len(token)-2])
		if value, ok := substitutions[key]; ok {
			return value
		}
		return token
	})
}

// Preview is the rendered text of a template together with every issue a
// caller should display next to it.
type Preview struct {
	Text   string  `json:"text"`
	Issues []Issue `json:"issues"`
	Valid  bool    `json:"valid"`
}

// RenderPreview renders text and collects definition issues, value issues
// and placeholders that have no definition. The text is always produced.
func RenderPreview(text string, defs []Definition, values Values) Preview {
	issues := ValidateDefinitions(defs)
	issues = append(issues, ValidateValues(defs, values)...)

	defined := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		defined[def.Key] = struct{}{}
	}
	for _, key := range Extract(text) {
		if _, ok := defined[key]; ok {
			continue
		}
		issues = append(issues, Issue{
			Key:     key,
			Code:    CodeUndefinedVariable,
			Message: "placeholder has no variable definition",
		})
	}

	if issues == nil {
		issues = []Issue{}
	}
	return Preview{
		Text:   Render(text, defs, values),
		Issues: issues,
		Valid:  len(issues) == 0,
	}
}
