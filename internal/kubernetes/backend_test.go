package kubernetes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"stevedore/internal/reconcile"
)

func TestApplyCreatesThenConverges(t *testing.T) {
	applier := NewApplier(testClients())
	backend := NewManifestBackend(applier)

	obj, identity, err := DecodeManifest([]byte(deploymentYAML), "default")
	require.NoError(t, err)

	first, err := reconcile.Apply(context.Background(), identity, obj, backend)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "web", first.Observed.GetName())

	// The resource now exists, so the optimistic create conflicts and
	// the apply converges through a patch instead.
	updated := obj.DeepCopy()
	require.NoError(t, unstructured.SetNestedField(updated.Object, int64(5), "spec", "replicas"))

	second, err := reconcile.Apply(context.Background(), identity, updated, backend)
	require.NoError(t, err)
	assert.False(t, second.Created)

	replicas, found, err := unstructured.NestedInt64(second.Observed.Object, "spec", "replicas")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(5), replicas)
}

func TestApplyRejectsUnnamedManifest(t *testing.T) {
	applier := NewApplier(testClients())
	backend := NewManifestBackend(applier)

	obj, identity, err := DecodeManifest([]byte(deploymentYAML), "default")
	require.NoError(t, err)
	identity.Name = ""

	_, err = reconcile.Apply(context.Background(), identity, obj, backend)
	require.Error(t, err)
	assert.True(t, reconcile.IsValidation(err))
}
