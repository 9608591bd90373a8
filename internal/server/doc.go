// Package server wires the tool providers into an MCP server and runs
// it over the configured transport (stdio, SSE or streamable HTTP).
//
// Providers stay decoupled from the MCP protocol: they expose
// api.ToolMetadata and api.CallToolResult, and this package converts
// both to their mcp-go equivalents. Each tool invocation gets an
// operation ID for log correlation.
package server
