// Package kubernetes adapts the Kubernetes API server to the reconcile
// protocol.
//
// Manifests arrive as YAML, are decoded to unstructured objects, and
// are applied through per-kind create/patch method pairs on the typed
// clientset (Deployment, Service, ConfigMap, Secret, Namespace). Kinds
// without a specialized pair fall through to a generic object-level
// create/patch escape hatch backed by the controller-runtime client,
// with the same create-conflict-update sequencing.
//
// Conflict detection uses the API server's own AlreadyExists status;
// there is no client-side existence check. Namespace defaulting runs
// during decoding, before lock key derivation, so explicit and
// implicit references to the same effective namespace collide on the
// same key.
package kubernetes
