package server

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stevedore/internal/api"
	"stevedore/internal/config"
)

type stubProvider struct {
	tools    []api.ToolMetadata
	lastTool string
	lastArgs map[string]interface{}
	result   *api.CallToolResult
	err      error
}

func (s *stubProvider) GetTools() []api.ToolMetadata { return s.tools }

func (s *stubProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	s.lastTool = toolName
	s.lastArgs = args
	return s.result, s.err
}

func TestCreateToolsRegistersAllProviders(t *testing.T) {
	first := &stubProvider{tools: []api.ToolMetadata{
		{Name: "build_image"},
		{Name: "push_image"},
	}}
	second := &stubProvider{tools: []api.ToolMetadata{
		{Name: "apply_manifest"},
	}}

	s := New(config.ServerConfig{Transport: config.TransportStdio}, "test", first, second)
	tools := s.createTools()

	require.Len(t, tools, 3)
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Tool.Name)
	}
	assert.ElementsMatch(t, []string{"build_image", "push_image", "apply_manifest"}, names)
}

func TestToolHandlerPassesArguments(t *testing.T) {
	provider := &stubProvider{
		result: &api.CallToolResult{Content: []interface{}{"ok"}},
	}
	handler := createToolHandler(provider, "tag_image")

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"source": "a", "target": "b"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "tag_image", provider.lastTool)
	assert.Equal(t, map[string]interface{}{"source": "a", "target": "b"}, provider.lastArgs)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "ok", text.Text)
}

func TestToolHandlerWrapsExecutionError(t *testing.T) {
	provider := &stubProvider{err: errors.New("daemon unavailable")}
	handler := createToolHandler(provider, "docker_ping")

	result, err := handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.True(t, result.IsError)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "daemon unavailable")
}

func TestToolHandlerToleratesMissingArguments(t *testing.T) {
	provider := &stubProvider{
		result: &api.CallToolResult{Content: []interface{}{"ok"}},
	}
	handler := createToolHandler(provider, "docker_ping")

	result, err := handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, provider.lastArgs)
	assert.Empty(t, provider.lastArgs)
}

func TestServerStartStop(t *testing.T) {
	provider := &stubProvider{tools: []api.ToolMetadata{{Name: "docker_ping"}}}

	s := New(config.ServerConfig{Transport: config.TransportStreamableHTTP, Host: "127.0.0.1", Port: 0}, "test", provider)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx), "second start must be rejected")

	require.NoError(t, s.Stop(ctx))
	assert.Error(t, s.Stop(ctx), "second stop must be rejected")
}
