package variables

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Code identifies a validation outcome.
type Code string

// Value codes are returned by Validate; the rest describe definitions or
// placeholders.
const (
	CodeRequired          Code = "required"
	CodeNotANumber        Code = "not_a_number"
	CodeNotABoolean       Code = "not_a_boolean"
	CodeNotAValidOption   Code = "not_a_valid_option"
	CodeSelectNoOptions   Code = "select_missing_options"
	CodeInvalidKey        Code = "invalid_key"
	CodeUnknownType       Code = "unknown_type"
	CodeDuplicateKey      Code = "duplicate_key"
	CodeUndefinedVariable Code = "undefined_variable"
)

// Issue is a validation failure for one variable. Issues are reported to the
// caller; they never abort rendering or reconciliation.
type Issue struct {
	Key     string `json:"key"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Key, i.Message)
}

var booleanLiterals = map[string]struct{}{
	"true": {}, "false": {}, "1": {}, "0": {}, "yes": {}, "no": {},
}

// Validate checks a candidate value against def. present is false when the
// caller supplied no value at all. It returns nil when the value is accepted.
func Validate(def Definition, value string, present bool) *Issue {
	trimmed := strings.TrimSpace(value)
	if !present || trimmed == "" {
		if def.Required {
			return &Issue{Key: def.Key, Code: CodeRequired, Message: "value is required"}
		}
		return nil
	}

	switch def.Type {
	case TypeNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return &Issue{Key: def.Key, Code: CodeNotANumber, Message: fmt.Sprintf("%q is not a number", value)}
		}
	case TypeBoolean:
		if _, ok := booleanLiterals[strings.ToLower(trimmed)]; !ok {
			return &Issue{Key: def.Key, Code: CodeNotABoolean, Message: fmt.Sprintf("%q is not a boolean (true, false, 1, 0, yes, no)", value)}
		}
	case TypeSelect:
		if !slices.Contains(def.Options, value) {
			return &Issue{Key: def.Key, Code: CodeNotAValidOption, Message: fmt.Sprintf("%q is not one of the configured options", value)}
		}
	}
	return nil
}

// ValidateValue looks the definition's key up in values and validates it.
func ValidateValue(def Definition, values Values) *Issue {
	value, ok := values.lookup(def.Key)
	return Validate(def, value, ok)
}

// ValidateValues validates every definition against values, in definition order.
func ValidateValues(defs []Definition, values Values) []Issue {
	var issues []Issue
	for _, def := range defs {
		if issue := ValidateValue(def, values); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

// ValidateDefinition reports problems with a definition itself, independent
// of any value.
func ValidateDefinition(def Definition) []Issue {
	var issues []Issue
	if !ValidKey(def.Key) {
		issues = append(issues, Issue{
			Key:     def.Key,
			Code:    CodeInvalidKey,
			Message: "variable key must start with a letter or underscore and contain only letters, numbers and underscores",
		})
	}
	if !def.Type.Valid() {
		issues = append(issues, Issue{
			Key:     def.Key,
			Code:    CodeUnknownType,
			Message: fmt.Sprintf("unknown variable type %q", def.Type),
		})
	}
	if def.Type == TypeSelect && len(def.Options) == 0 {
		issues = append(issues, Issue{
			Key:     def.Key,
			Code:    CodeSelectNoOptions,
			Message: "select variables must have options",
		})
	}
	return issues
}

// ValidateDefinitions checks every definition and flags repeated keys.
func ValidateDefinitions(defs []Definition) []Issue {
	var issues []Issue
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		issues = append(issues, ValidateDefinition(def)...)
		if _, ok := seen[def.Key]; ok {
			issues = append(issues, Issue{
				Key:     def.Key,
				Code:    CodeDuplicateKey,
				Message: "variable key is declared more than once",
			})
			continue
		}
		seen[def.Key] = struct{}{}
	}
	return issues
}
