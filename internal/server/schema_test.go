package server

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stevedore/internal/api"
)

func TestConvertToMCPSchema(t *testing.T) {
	args := []api.ArgMetadata{
		{
			Name:        "image",
			Type:        "string",
			Required:    true,
			Description: "Image reference",
		},
		{
			Name:        "force",
			Type:        "boolean",
			Required:    false,
			Description: "Force removal",
			Default:     false,
		},
	}

	schema := convertToMCPSchema(args)

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"image"}, schema.Required)

	imageProp, ok := schema.Properties["image"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", imageProp["type"])
	assert.Equal(t, "Image reference", imageProp["description"])

	forceProp, ok := schema.Properties["force"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, forceProp["default"])
}

func TestConvertToMCPSchemaDetailedSchemaWins(t *testing.T) {
	args := []api.ArgMetadata{
		{
			Name:        "tags",
			Type:        "array",
			Description: "Image references",
			Schema: map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
	}

	schema := convertToMCPSchema(args)

	prop, ok := schema.Properties["tags"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "array", prop["type"])
	assert.NotNil(t, prop["items"])
	assert.Equal(t, "Image references", prop["description"])
	assert.Empty(t, schema.Required)
}

func TestConvertToMCPResult(t *testing.T) {
	result := convertToMCPResult(&api.CallToolResult{
		Content: []interface{}{
			"plain text",
			map[string]interface{}{"created": true},
		},
		IsError: false,
	})

	require.Len(t, result.Content, 2)
	assert.False(t, result.IsError)

	first, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "plain text", first.Text)

	second, ok := result.Content[1].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"created": true}`, second.Text)
}

func TestConvertToMCPResultReportsUnserializableContent(t *testing.T) {
	result := convertToMCPResult(&api.CallToolResult{
		Content: []interface{}{func() {}},
	})

	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "unserializable tool content")
}

func TestConvertToMCPResultPreservesError(t *testing.T) {
	result := convertToMCPResult(&api.CallToolResult{
		Content: []interface{}{"boom"},
		IsError: true,
	})
	assert.True(t, result.IsError)
}
