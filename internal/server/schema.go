package server

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"stevedore/internal/api"
)

// convertToMCPSchema converts internal arg metadata to the MCP input
// schema format. A detailed Schema field on an argument takes
// precedence over the basic Type field.
func convertToMCPSchema(args []api.ArgMetadata) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	required := []string{}

	for _, arg := range args {
		var propSchema map[string]interface{}

		if len(arg.Schema) > 0 {
			propSchema = make(map[string]interface{}, len(arg.Schema)+2)
			for key, value := range arg.Schema {
				propSchema[key] = value
			}
			if arg.Description != "" {
				propSchema["description"] = arg.Description
			}
		} else {
			propSchema = map[string]interface{}{
				"type":        arg.Type,
				"description": arg.Description,
			}
		}

		if arg.Default != nil {
			propSchema["default"] = arg.Default
		}

		properties[arg.Name] = propSchema

		if arg.Required {
			required = append(required, arg.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// convertToMCPResult converts an internal tool result to MCP format.
// String content becomes text content directly; anything else is
// marshaled to JSON first.
func convertToMCPResult(result *api.CallToolResult) *mcp.CallToolResult {
	mcpContent := make([]mcp.Content, len(result.Content))

	for i, content := range result.Content {
		if text, ok := content.(string); ok {
			mcpContent[i] = mcp.NewTextContent(text)
			continue
		}
		jsonBytes, err := json.Marshal(content)
		if err != nil {
			mcpContent[i] = mcp.NewTextContent(fmt.Sprintf("unserializable tool content: %v", err))
			continue
		}
		mcpContent[i] = mcp.NewTextContent(string(jsonBytes))
	}

	return &mcp.CallToolResult{
		Content: mcpContent,
		IsError: result.IsError,
	}
}
