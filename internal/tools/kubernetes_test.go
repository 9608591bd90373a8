package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	kfake "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"stevedore/internal/api"
	"stevedore/internal/kubernetes"
	"stevedore/internal/locking"
)

const deploymentManifest = `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 2
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: registry.example.com/app:v1
`

func newKubernetesProvider(t *testing.T) *KubernetesProvider {
	t.Helper()

	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))

	clients := &kubernetes.Clients{
		Typed:   kfake.NewSimpleClientset(),
		Generic: ctrlfake.NewClientBuilder().WithScheme(scheme).Build(),
	}
	applier := kubernetes.NewApplier(clients)
	return NewKubernetesProvider(applier, locking.NewRegistry(), testTimeouts(), "default")
}

func TestApplyManifestCreatesThenUpdates(t *testing.T) {
	provider := newKubernetesProvider(t)
	args := map[string]interface{}{"manifest": deploymentManifest}

	result, err := provider.ExecuteTool(context.Background(), "apply_manifest", args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := contentString(t, result.Content)
	assert.Contains(t, text, `"created": true`)
	assert.Contains(t, text, `"namespace": "default"`)
	assert.Contains(t, text, `"name": "web"`)

	// Second apply hits the conflict and converges through an update.
	result, err = provider.ExecuteTool(context.Background(), "apply_manifest", args)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), `"created": false`)
}

func TestApplyManifestRequiresManifest(t *testing.T) {
	provider := newKubernetesProvider(t)

	result, err := provider.ExecuteTool(context.Background(), "apply_manifest", map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), "manifest argument is required")
}

func TestApplyManifestRejectsGarbage(t *testing.T) {
	provider := newKubernetesProvider(t)

	result, err := provider.ExecuteTool(context.Background(), "apply_manifest", map[string]interface{}{
		"manifest": "not: [valid",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), "Invalid manifest")
}

func TestGetResource(t *testing.T) {
	provider := newKubernetesProvider(t)

	manifest := `
apiVersion: v1
kind: ServiceAccount
metadata:
  name: deployer
`
	result, err := provider.ExecuteTool(context.Background(), "apply_manifest", map[string]interface{}{
		"manifest": manifest,
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = provider.ExecuteTool(context.Background(), "get_resource", map[string]interface{}{
		"kind": "ServiceAccount",
		"name": "deployer",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), `"name": "deployer"`)
}

func TestGetResourceNotFound(t *testing.T) {
	provider := newKubernetesProvider(t)

	result, err := provider.ExecuteTool(context.Background(), "get_resource", map[string]interface{}{
		"api_version": "apps/v1",
		"kind":        "Deployment",
		"name":        "absent",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), "not found")
}

func TestGetResourceRequiresArgs(t *testing.T) {
	provider := newKubernetesProvider(t)

	result, err := provider.ExecuteTool(context.Background(), "get_resource", map[string]interface{}{
		"kind": "Deployment",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestClusterPing(t *testing.T) {
	provider := newKubernetesProvider(t)

	result, err := provider.ExecuteTool(context.Background(), "cluster_ping", map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), "Cluster reachable")
}

func TestKubernetesProviderUnknownTool(t *testing.T) {
	provider := newKubernetesProvider(t)

	_, err := provider.ExecuteTool(context.Background(), "drain_node", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}
