package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stevedore/pkg/logging"
)

const reconcileSubsystem = "Reconcile"

// Identity is the backend-specific addressing tuple for a resource.
// For Kubernetes it is kind/namespace/name; for Docker images the kind
// is "Image", the namespace is empty and the name is the image
// reference.
type Identity struct {
	Kind      string
	Namespace string
	Name      string
}

// String renders the identity for error messages and logs.
func (id Identity) String() string {
	if id.Namespace != "" {
		return id.Kind + "/" + id.Namespace + "/" + id.Name
	}
	return id.Kind + "/" + id.Name
}

// ValidationError reports a malformed identity detected before any
// backend call. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation checks whether an error is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// Outcome describes a completed reconciliation: whether the resource
// was created fresh or updated in place, and the state the backend
// reported afterwards.
type Outcome[O any] struct {
	Created  bool
	Observed O
}

// Backend supplies the three primitive operations the protocol needs.
// D is the desired-state type, O the observed-state type the backend
// returns. Implementations are stateless from the protocol's point of
// view; every call is independent.
type Backend[D, O any] interface {
	// Create attempts to create the resource. A failure classified by
	// IsConflict means the resource already exists.
	Create(ctx context.Context, desired D) (O, error)

	// Update brings an existing resource to the desired state.
	Update(ctx context.Context, identity Identity, desired D) (O, error)

	// IsConflict reports whether err is the backend's "already exists"
	// signal on a create attempt.
	IsConflict(err error) bool
}

// Apply runs the create-or-update protocol for one resource:
//
//  1. Create the resource.
//  2. On success, return Outcome{Created: true}.
//  3. On a conflict, update instead and return Outcome{Created: false}.
//  4. Any other create failure propagates unchanged; no update is
//     attempted.
//
// Transient backend failures (network, auth, server errors) are
// surfaced as-is; retry policy belongs to the caller, not here.
func Apply[D, O any](ctx context.Context, identity Identity, desired D, backend Backend[D, O]) (Outcome[O], error) {
	var zero Outcome[O]

	if strings.TrimSpace(identity.Name) == "" {
		return zero, &ValidationError{Field: "name", Reason: "resource name must not be empty"}
	}

	observed, err := backend.Create(ctx, desired)
	if err == nil {
		logging.Debug(reconcileSubsystem, "Created %s", identity)
		return Outcome[O]{Created: true, Observed: observed}, nil
	}

	if !backend.IsConflict(err) {
		return zero, fmt.Errorf("create %s: %w", identity, err)
	}

	logging.Debug(reconcileSubsystem, "%s already exists, falling back to update", identity)

	observed, err = backend.Update(ctx, identity, desired)
	if err != nil {
		// An update failure after a conflict is a real failure, never
		// masked as success.
		return zero, fmt.Errorf("update %s after create conflict: %w", identity, err)
	}

	return Outcome[O]{Created: false, Observed: observed}, nil
}
