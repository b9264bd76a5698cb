package prompts

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// Frontmatter is the YAML header of a prompt file.
type Frontmatter struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Version     int                    `yaml:"version,omitempty"`
	Active      *bool                  `yaml:"active,omitempty"`
	Metadata    map[string]any         `yaml:"metadata,omitempty"`
	Variables   []variables.Definition `yaml:"variables,omitempty"`
}

// File is a prompt parsed from markdown with optional YAML frontmatter.
// The body after the frontmatter is the prompt content.
type File struct {
	Frontmatter
	Content string
	Source  string
}

// ParseFile parses a prompt file. Without frontmatter the whole document is
// the content and the name is derived from source.
func ParseFile(source string, data []byte) (*File, error) {
	front, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	file := &File{Frontmatter: front, Content: strings.TrimSpace(body), Source: source}
	if strings.TrimSpace(file.Name) == "" {
		file.Name = nameFromSource(source)
	}
	file.Name = strings.TrimSpace(file.Name)

	if file.Name == "" {
		return nil, fmt.Errorf("prompt %s missing name", source)
	}
	if file.Content == "" {
		return nil, fmt.Errorf("prompt %s has no content", source)
	}
	return file, nil
}

// LoadFile reads and parses one prompt file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- prompt path is user-provided
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", path, err)
	}
	return ParseFile(path, data)
}

// LoadFromDir reads all prompt files (.md with YAML frontmatter) from a directory.
func LoadFromDir(dir string) ([]*File, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	results := make([]*File, 0, len(entries))
	for _, path := range entries {
		file, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		results = append(results, file)
	}
	return results, nil
}

// LoadPath loads a single file or every prompt file of a directory.
func LoadPath(path string) ([]*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadFromDir(path)
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*File{file}, nil
}

// Input converts the file into a create request. The description is kept
// in metadata.
func (f *File) Input() core.PromptInput {
	in := core.PromptInput{
		Name:      f.Name,
		Content:   f.Content,
		Variables: f.Variables,
		Active:    f.Active,
	}

	if len(f.Metadata) > 0 || f.Description != "" {
		in.Metadata = make(map[string]any, len(f.Metadata)+1)
		for k, v := range f.Metadata {
			in.Metadata[k] = v
		}
		if f.Description != "" {
			in.Metadata["description"] = f.Description
		}
	}
	if f.Version > 0 {
		version := f.Version
		in.Version = &version
	}
	return in
}

func parseFrontmatter(data []byte) (Frontmatter, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Frontmatter{}, "", fmt.Errorf("empty prompt")
	}

	lines := bufio.NewScanner(bytes.NewReader(trimmed))
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines.Split(bufio.ScanLines)

	var (
		frontmatter []string
		body        []string
		inFront     bool
		headerSeen  bool
		first       = true
	)

	for lines.Scan() {
		line := lines.Text()
		switch {
		case first && strings.TrimSpace(line) == "---":
			headerSeen = true
			inFront = true
		case headerSeen && inFront && strings.TrimSpace(line) == "---":
			inFront = false
		default:
			if inFront {
				frontmatter = append(frontmatter, line)
			} else {
				body = append(body, line)
			}
		}
		first = false
	}
	if err := lines.Err(); err != nil {
		return Frontmatter{}, "", err
	}
	if inFront {
		return Frontmatter{}, "", fmt.Errorf("unterminated frontmatter")
	}

	var front Frontmatter
	if headerSeen {
		if err := yaml.Unmarshal([]byte(strings.Join(frontmatter, "\n")), &front); err != nil {
			return Frontmatter{}, "", fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	return front, strings.Join(body, "\n"), nil
}

func nameFromSource(source string) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
