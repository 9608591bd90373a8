// Package api defines the contract between tool providers and the MCP
// server layer.
//
// A tool provider exposes a set of named tools with typed argument
// metadata (ToolMetadata) and executes them on demand (ToolProvider).
// The server layer converts this metadata into MCP tool schemas and
// routes incoming calls back to the owning provider. Results travel in
// the uniform CallToolResult envelope regardless of backend.
//
// The package also carries the shared typed errors used for
// classification across subsystems.
package api
