package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"stevedore/internal/api"
	"stevedore/internal/config"
	"stevedore/pkg/logging"
)

const serverSubsystem = "Server"

// Server exposes the tool providers over MCP.
type Server struct {
	config    config.ServerConfig
	version   string
	providers []api.ToolProvider

	server *mcpserver.MCPServer

	// Transport-specific servers
	sseServer            *mcpserver.SSEServer
	streamableHTTPServer *mcpserver.StreamableHTTPServer
	stdioServer          *mcpserver.StdioServer

	ctx        context.Context
	cancelFunc context.CancelFunc
	mu         sync.Mutex
}

// New creates a server for the given providers. Providers are
// registered in order; tool names must be unique across them.
func New(serverConfig config.ServerConfig, version string, providers ...api.ToolProvider) *Server {
	return &Server{
		config:    serverConfig,
		version:   version,
		providers: providers,
	}
}

// Start registers all tools and starts the configured transport. It
// returns once the transport is listening; Stop shuts it down.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("server already started")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	mcpServer := mcpserver.NewMCPServer(
		"stevedore",
		s.version,
		mcpserver.WithToolCapabilities(true),
	)

	tools := s.createTools()
	mcpServer.AddTools(tools...)
	s.server = mcpServer

	logging.Info(serverSubsystem, "Registered %d tools from %d providers", len(tools), len(s.providers))

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	switch s.config.Transport {
	case config.TransportSSE:
		logging.Info(serverSubsystem, "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
		s.sseServer = mcpserver.NewSSEServer(
			s.server,
			mcpserver.WithBaseURL(baseURL),
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithKeepAlive(true),
			mcpserver.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := s.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error(serverSubsystem, err, "SSE server error")
			}
		}()

	case config.TransportStreamableHTTP:
		logging.Info(serverSubsystem, "Starting MCP server with streamable-http transport on %s", addr)
		s.streamableHTTPServer = mcpserver.NewStreamableHTTPServer(s.server)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error(serverSubsystem, err, "Streamable HTTP server error")
			}
		}()

	case config.TransportStdio:
		fallthrough
	default:
		logging.Info(serverSubsystem, "Starting MCP server with stdio transport")
		s.stdioServer = mcpserver.NewStdioServer(s.server)
		stdioServer := s.stdioServer
		serverCtx := s.ctx
		go func() {
			if err := stdioServer.Listen(serverCtx, os.Stdin, os.Stdout); err != nil {
				logging.Error(serverSubsystem, err, "Stdio server error")
			}
		}()
	}

	return nil
}

// Stop shuts down the transport and releases the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.server == nil {
		s.mu.Unlock()
		return fmt.Errorf("server not started")
	}

	logging.Info(serverSubsystem, "Stopping MCP server")

	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(serverSubsystem, err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(serverSubsystem, err, "Error shutting down streamable HTTP server")
		}
	}
	// The stdio server stops on context cancellation, no explicit
	// shutdown needed.

	s.mu.Lock()
	s.server = nil
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.mu.Unlock()

	return nil
}

// createTools builds MCP tool registrations for every provider tool.
func (s *Server) createTools() []mcpserver.ServerTool {
	var tools []mcpserver.ServerTool

	for _, provider := range s.providers {
		for _, toolMeta := range provider.GetTools() {
			tools = append(tools, mcpserver.ServerTool{
				Tool: mcp.Tool{
					Name:        toolMeta.Name,
					Description: toolMeta.Description,
					InputSchema: convertToMCPSchema(toolMeta.Args),
				},
				Handler: createToolHandler(provider, toolMeta.Name),
			})
		}
	}

	return tools
}

// createToolHandler wraps a provider's ExecuteTool in an MCP handler.
// Each invocation is tagged with an operation ID so concurrent calls
// can be told apart in the logs.
func createToolHandler(provider api.ToolProvider, toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}

		opID := uuid.New().String()[:8]
		start := time.Now()
		logging.Debug(serverSubsystem, "[%s] Executing %s", opID, toolName)

		result, err := provider.ExecuteTool(ctx, toolName, args)
		if err != nil {
			logging.Error(serverSubsystem, err, "[%s] Tool execution failed for %s", opID, toolName)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		logging.Debug(serverSubsystem, "[%s] Finished %s in %s", opID, toolName, time.Since(start).Round(time.Millisecond))
		return convertToMCPResult(result), nil
	}
}
