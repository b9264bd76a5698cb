package mcp

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mkashifaslam/prompt-studio/internal/core"
)

//go:embed schema/mcp-server.schema.json
var serverSchemaJSON []byte

var (
	serverSchemaOnce sync.Once
	serverSchema     *gojsonschema.Schema
	serverSchemaErr  error
)

const defaultTimeout = 30

// FieldIssue is one schema violation in a server configuration.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a server configuration.
type ValidationError struct {
	Issues []FieldIssue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return "invalid mcp server config: " + strings.Join(parts, "; ")
}

func compiledSchema() (*gojsonschema.Schema, error) {
	serverSchemaOnce.Do(func() {
		serverSchema, serverSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(serverSchemaJSON))
		if serverSchemaErr != nil {
			serverSchemaErr = fmt.Errorf("compile mcp server schema: %w", serverSchemaErr)
		}
	})
	return serverSchema, serverSchemaErr
}

// ParseServer validates raw JSON against the server schema and decodes it
// with defaults applied. Unknown fields are ignored.
func ParseServer(raw []byte) (*core.McpServer, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ValidationError{Issues: []FieldIssue{{Field: "(root)", Message: "body is required"}}}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{{Field: "(root)", Message: "body must be valid JSON"}}}
	}
	if !result.Valid() {
		verr := &ValidationError{Issues: make([]FieldIssue, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			verr.Issues = append(verr.Issues, FieldIssue{Field: desc.Field(), Message: desc.Description()})
		}
		sort.SliceStable(verr.Issues, func(i, j int) bool { return verr.Issues[i].Field < verr.Issues[j].Field })
		return nil, verr
	}

	var server core.McpServer
	if err := json.Unmarshal(raw, &server); err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{{Field: "(root)", Message: err.Error()}}}
	}
	ApplyDefaults(&server)
	return &server, nil
}

// ApplyDefaults fills the fields the schema leaves optional.
func ApplyDefaults(server *core.McpServer) {
	if server.Transport == "" {
		server.Transport = core.McpTransportStdio
	}
	if server.Timeout == 0 {
		server.Timeout = defaultTimeout
	}
	if server.Args == nil {
		server.Args = []string{}
	}
	if server.Env == nil {
		server.Env = map[string]string{}
	}
	if server.Capabilities == nil {
		server.Capabilities = []string{}
	}
	if server.Tools == nil {
		server.Tools = []core.McpTool{}
	}
}
