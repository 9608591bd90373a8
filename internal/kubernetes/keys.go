package kubernetes

import "stevedore/internal/reconcile"

// ResourceKey derives the serialization key for one resource. Exact
// identity match: manifests differing in kind, namespace or name never
// serialize against each other. The identity must already carry the
// effective (defaulted) namespace.
func ResourceKey(identity reconcile.Identity) string {
	return "k8s:" + identity.Kind + ":" + identity.Namespace + ":" + identity.Name
}
