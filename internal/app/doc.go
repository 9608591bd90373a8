// Package app bootstraps and runs the stevedore server: it
// initializes logging, loads configuration, connects the Docker and
// Kubernetes clients, assembles the tool providers around one shared
// lock registry, and runs the MCP server until shutdown.
package app
