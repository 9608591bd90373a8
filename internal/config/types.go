package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// Config is the top-level configuration structure for stevedore.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Locking    LockingConfig    `yaml:"locking"`
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ServerConfig defines how the MCP server is exposed.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // stdio, sse or streamable-http (default: stdio)
	Host      string `yaml:"host,omitempty"`      // Host to bind to for network transports (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for network transports (default: 8891)
}

// LockingConfig bounds lock acquisition. Both timeouts can be updated
// at runtime through the config watcher.
type LockingConfig struct {
	// DefaultTimeout bounds lock acquisition for ordinary mutating
	// operations (tag, remove, manifest apply).
	DefaultTimeout Duration `yaml:"defaultTimeout,omitempty"`

	// BuildTimeout bounds lock acquisition for build and push
	// operations, which legitimately hold their locks much longer.
	BuildTimeout Duration `yaml:"buildTimeout,omitempty"`
}

// KubernetesConfig defines how the cluster connection is established.
type KubernetesConfig struct {
	Kubeconfig       string `yaml:"kubeconfig,omitempty"`       // Path to kubeconfig; empty means KUBECONFIG or in-cluster
	DefaultNamespace string `yaml:"defaultNamespace,omitempty"` // Namespace for manifests that omit one (default: default)
}

// MonitoringConfig controls the lock registry status exposure.
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled,omitempty"` // Whether the lock_status tool is registered (default: false)
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
