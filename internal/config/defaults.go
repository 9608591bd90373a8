package config

import "time"

const (
	// DefaultLockTimeout bounds ordinary lock acquisitions.
	DefaultLockTimeout = 30 * time.Second

	// DefaultBuildLockTimeout bounds build and push lock acquisitions.
	DefaultBuildLockTimeout = 10 * time.Minute
)

// GetDefaultConfig returns the default configuration for stevedore.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8891,
		},
		Locking: LockingConfig{
			DefaultTimeout: Duration(DefaultLockTimeout),
			BuildTimeout:   Duration(DefaultBuildLockTimeout),
		},
		Kubernetes: KubernetesConfig{
			DefaultNamespace: "default",
		},
		Monitoring: MonitoringConfig{
			Enabled: false,
		},
	}
}
