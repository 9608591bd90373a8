// Package config defines the server configuration: transport settings,
// lock timeouts, Kubernetes connection parameters and the monitoring
// flag. Configuration is loaded from a YAML file with environment
// variable overrides, held in a Store safe for concurrent reads, and
// the lock timeouts can be hot-reloaded through a filesystem watcher.
package config
