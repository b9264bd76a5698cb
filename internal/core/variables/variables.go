// Package variables discovers, reconciles, validates and renders the {{key}}
// placeholders of prompt templates.
//
// Every function in this package is pure: callers own sequencing and any
// debouncing of text-change events.
package variables

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Type is the declared value type of a template variable.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeSelect  Type = "select"
)

// Types lists the supported variable types in display order.
var Types = []Type{TypeString, TypeNumber, TypeBoolean, TypeSelect}

// Valid reports whether t is one of the supported types.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeSelect:
		return true
	default:
		return false
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether key is a legal variable identifier.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Definition describes one declared template variable.
type Definition struct {
	Key          string   `json:"key" yaml:"key"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool     `json:"required" yaml:"required"`
	Type         Type     `json:"type" yaml:"type"`
	DefaultValue string   `json:"defaultValue,omitempty" yaml:"default,omitempty"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// NewDefinition returns the definition synthesized for a newly referenced key.
func NewDefinition(key string) Definition {
	return Definition{
		Key:      key,
		Required: true,
		Type:     TypeString,
	}
}

// UnmarshalJSON applies the defaults of a stored definition: required is true
// and type is string unless the payload says otherwise.
func (d *Definition) UnmarshalJSON(data []byte) error {
	type plain Definition
	decoded := plain{Required: true, Type: TypeString}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Type == "" {
		decoded.Type = TypeString
	}
	*d = Definition(decoded)
	return nil
}

// UnmarshalYAML applies the same defaults as UnmarshalJSON for prompt files.
func (d *Definition) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Definition
	decoded := plain{Required: true, Type: TypeString}
	if err := unmarshal(&decoded); err != nil {
		return err
	}
	if decoded.Type == "" {
		decoded.Type = TypeString
	}
	*d = Definition(decoded)
	return nil
}

// Normalize trims the key, lower-cases the type and clears options on
// non-select variables.
func (d Definition) Normalize() Definition {
	d.Key = strings.TrimSpace(d.Key)
	d.Type = Type(strings.ToLower(strings.TrimSpace(string(d.Type))))
	if d.Type == "" {
		d.Type = TypeString
	}
	if d.Type != TypeSelect {
		d.Options = nil
		return d
	}
	if len(d.Options) > 0 {
		d.Options = append([]string(nil), d.Options...)
	}
	return d
}

// NormalizeAll applies Normalize to every definition.
func NormalizeAll(defs []Definition) []Definition {
	if defs == nil {
		return nil
	}
	out := make([]Definition, len(defs))
	for i, def := range defs {
		out[i] = def.Normalize()
	}
	return out
}

// Values maps variable keys to caller-supplied values. A missing key means
// the value is absent.
type Values map[string]string

func (v Values) lookup(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	value, ok := v[key]
	return value, ok
}
