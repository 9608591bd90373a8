package api

import "context"

// CallToolResult represents the result of a tool call. Content entries
// are either plain strings or JSON-marshalable values; the server layer
// renders them as MCP text content.
type CallToolResult struct {
	Content []interface{} `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolMetadata describes a tool that a provider exposes.
type ToolMetadata struct {
	Name        string // e.g. "build_image", "apply_manifest"
	Description string
	Args        []ArgMetadata
}

// ArgMetadata describes a single tool argument.
type ArgMetadata struct {
	Name        string
	Type        string // "string", "number", "boolean", "object", "array"
	Required    bool
	Description string
	Default     interface{}

	// Schema optionally carries a full JSON Schema fragment for
	// arguments whose structure the basic Type field cannot express.
	Schema map[string]interface{}
}

// ToolProvider is implemented by the docker, kubernetes and status
// tool packages.
type ToolProvider interface {
	// GetTools returns all tools this provider offers.
	GetTools() []ToolMetadata

	// ExecuteTool executes a tool by name.
	ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error)
}
