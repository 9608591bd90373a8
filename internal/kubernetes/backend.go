package kubernetes

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"stevedore/internal/reconcile"
)

// ManifestBackend adapts the applier to the reconcile protocol.
// Conflicts are recognized through the API server's AlreadyExists
// status, so no client-side existence check is made.
type ManifestBackend struct {
	applier *Applier
}

// NewManifestBackend creates the reconcile adapter for manifests.
func NewManifestBackend(applier *Applier) *ManifestBackend {
	return &ManifestBackend{applier: applier}
}

// Create creates the resource described by the manifest.
func (b *ManifestBackend) Create(ctx context.Context, desired *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return b.applier.Create(ctx, desired)
}

// Update merge-patches the existing resource to the desired state.
func (b *ManifestBackend) Update(ctx context.Context, identity reconcile.Identity, desired *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return b.applier.Patch(ctx, identity, desired)
}

// IsConflict reports whether err is the API server's already-exists
// signal.
func (b *ManifestBackend) IsConflict(err error) bool {
	return apierrors.IsAlreadyExists(err)
}

// compile-time interface check
var _ reconcile.Backend[*unstructured.Unstructured, *unstructured.Unstructured] = (*ManifestBackend)(nil)
