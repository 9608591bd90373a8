package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STEVEDORE_LOCK_TIMEOUT",
		"STEVEDORE_BUILD_LOCK_TIMEOUT",
		"STEVEDORE_MONITORING_ENABLED",
		"STEVEDORE_NAMESPACE",
		"KUBECONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, TransportStdio, config.Server.Transport)
	assert.Equal(t, DefaultLockTimeout, config.Locking.DefaultTimeout.Std())
	assert.Equal(t, DefaultBuildLockTimeout, config.Locking.BuildTimeout.Std())
	assert.Equal(t, "default", config.Kubernetes.DefaultNamespace)
	assert.False(t, config.Monitoring.Enabled)
}

func TestLoadParsesYAML(t *testing.T) {
	clearEnv(t)

	dir := writeConfigFile(t, `
server:
  transport: sse
  host: 0.0.0.0
  port: 9000
locking:
  defaultTimeout: 45s
  buildTimeout: 20m
kubernetes:
  kubeconfig: /etc/stevedore/kubeconfig
  defaultNamespace: staging
monitoring:
  enabled: true
`)

	config, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, TransportSSE, config.Server.Transport)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, 45*time.Second, config.Locking.DefaultTimeout.Std())
	assert.Equal(t, 20*time.Minute, config.Locking.BuildTimeout.Std())
	assert.Equal(t, "/etc/stevedore/kubeconfig", config.Kubernetes.Kubeconfig)
	assert.Equal(t, "staging", config.Kubernetes.DefaultNamespace)
	assert.True(t, config.Monitoring.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STEVEDORE_LOCK_TIMEOUT", "1m")
	t.Setenv("STEVEDORE_BUILD_LOCK_TIMEOUT", "30m")
	t.Setenv("STEVEDORE_MONITORING_ENABLED", "true")
	t.Setenv("STEVEDORE_NAMESPACE", "prod")

	dir := writeConfigFile(t, `
locking:
  defaultTimeout: 5s
kubernetes:
  defaultNamespace: staging
`)

	config, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, config.Locking.DefaultTimeout.Std())
	assert.Equal(t, 30*time.Minute, config.Locking.BuildTimeout.Std())
	assert.True(t, config.Monitoring.Enabled)
	assert.Equal(t, "prod", config.Kubernetes.DefaultNamespace)
}

func TestLoadKubeconfigFallsBackToEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBECONFIG", "/home/dev/.kube/config")

	config, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/.kube/config", config.Kubernetes.Kubeconfig)

	// An explicit path in the file wins over KUBECONFIG.
	dir := writeConfigFile(t, `
kubernetes:
  kubeconfig: /etc/stevedore/kubeconfig
`)
	config, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/etc/stevedore/kubeconfig", config.Kubernetes.Kubeconfig)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown transport",
			content: "server:\n  transport: websocket\n",
		},
		{
			name:    "malformed duration",
			content: "locking:\n  defaultTimeout: soon\n",
		},
		{
			name:    "non-positive timeout",
			content: "locking:\n  buildTimeout: 0s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigFile(t, tt.content)
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STEVEDORE_LOCK_TIMEOUT", "fast")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
