package core

import (
	"time"

	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// MaxPromptNameLength bounds prompt and MCP configuration names.
const MaxPromptNameLength = 160

// Prompt is a stored prompt template with its variable definitions.
type Prompt struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Content   string                 `json:"content"`
	Variables []variables.Definition `json:"variables"`
	Metadata  map[string]any         `json:"metadata"`
	Version   int                    `json:"version"`
	Active    bool                   `json:"active"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// PromptInput carries the fields accepted when creating a prompt.
type PromptInput struct {
	Name      string                 `json:"name"`
	Content   string                 `json:"content"`
	Variables []variables.Definition `json:"variables"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
	Version   *int                   `json:"version,omitempty"`
	Active    *bool                  `json:"active,omitempty"`
}

// PromptPatch carries a partial prompt update. Nil fields are left unchanged.
type PromptPatch struct {
	Name      *string                 `json:"name,omitempty"`
	Content   *string                 `json:"content,omitempty"`
	Variables *[]variables.Definition `json:"variables,omitempty"`
	Metadata  map[string]any          `json:"metadata,omitempty"`
	Version   *int                    `json:"version,omitempty"`
	Active    *bool                   `json:"active,omitempty"`
}

// McpTransport is the wire transport of an MCP server.
type McpTransport string

const (
	McpTransportStdio     McpTransport = "stdio"
	McpTransportSSE       McpTransport = "sse"
	McpTransportWebSocket McpTransport = "websocket"
)

// McpTransports lists the accepted transports.
var McpTransports = []McpTransport{McpTransportStdio, McpTransportSSE, McpTransportWebSocket}

// McpTool describes a tool advertised by an MCP server.
type McpTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// McpServer is the validated configuration of one MCP server.
type McpServer struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Disabled     bool              `json:"disabled"`
	Transport    McpTransport      `json:"transport"`
	Command      string            `json:"command,omitempty"`
	Args         []string          `json:"args"`
	Env          map[string]string `json:"env"`
	Cwd          string            `json:"cwd,omitempty"`
	Timeout      int               `json:"timeout"`
	BaseURL      string            `json:"baseUrl,omitempty"`
	APIKey       string            `json:"apiKey,omitempty"`
	Capabilities []string          `json:"capabilities"`
	Tools        []McpTool         `json:"tools"`
}

// McpConfig wraps an MCP server configuration with persistence metadata.
type McpConfig struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Config    McpServer `json:"config"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
