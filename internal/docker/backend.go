package docker

import (
	"context"
	"strings"

	"stevedore/internal/reconcile"
)

// ImageBuilder is the slice of the Docker client the build backend
// needs.
type ImageBuilder interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// ImageBackend adapts the Docker client to the reconcile protocol for
// image builds. The daemon has no create/update distinction for
// builds, so Create and Update both run the build. IsConflict
// classifies the daemon's "already exists" responses but is not taken
// on the build path today: builds overwrite their tags in place.
type ImageBackend struct {
	client ImageBuilder
}

// NewImageBackend creates the reconcile adapter for image builds.
func NewImageBackend(client ImageBuilder) *ImageBackend {
	return &ImageBackend{client: client}
}

// Create builds the image described by desired.
func (b *ImageBackend) Create(ctx context.Context, desired BuildOptions) (*BuildResult, error) {
	return b.client.Build(ctx, desired)
}

// Update rebuilds the image; a build is its own idempotent update.
func (b *ImageBackend) Update(ctx context.Context, identity reconcile.Identity, desired BuildOptions) (*BuildResult, error) {
	return b.client.Build(ctx, desired)
}

// IsConflict reports whether the daemon signalled an already-exists
// condition.
func (b *ImageBackend) IsConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// compile-time interface check
var _ reconcile.Backend[BuildOptions, *BuildResult] = (*ImageBackend)(nil)
