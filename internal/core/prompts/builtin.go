package prompts

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// LoadBuiltin loads the embedded prompt library.
func LoadBuiltin() ([]*File, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts: %w", err)
	}
	results := make([]*File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded prompt %s: %w", entry.Name(), err)
		}
		file, err := ParseFile("builtin/"+entry.Name(), data)
		if err != nil {
			return nil, err
		}
		results = append(results, file)
	}
	return results, nil
}

// Library indexes prompt files by name.
type Library struct {
	files map[string]*File
}

// NewLibrary builds a library, rejecting duplicate names.
func NewLibrary(files []*File) (*Library, error) {
	lib := &Library{files: make(map[string]*File)}
	for _, file := range files {
		if file == nil {
			continue
		}
		name := strings.TrimSpace(file.Name)
		if name == "" {
			return nil, fmt.Errorf("prompt %s missing name", file.Source)
		}
		if existing, ok := lib.files[name]; ok {
			return nil, fmt.Errorf("duplicate prompt name %q in %s and %s", name, existing.Source, file.Source)
		}
		lib.files[name] = file
	}
	return lib, nil
}

// BuiltinLibrary returns the embedded prompts as a library.
func BuiltinLibrary() (*Library, error) {
	files, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	return NewLibrary(files)
}

// Get returns the file for name.
func (l *Library) Get(name string) (*File, error) {
	if l == nil {
		return nil, fmt.Errorf("prompt library not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("prompt name is required")
	}
	file, ok := l.files[name]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", name)
	}
	return file, nil
}

// List returns files sorted by name.
func (l *Library) List() []*File {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.files))
	for name := range l.files {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]*File, 0, len(names))
	for _, name := range names {
		result = append(result, l.files[name])
	}
	return result
}
