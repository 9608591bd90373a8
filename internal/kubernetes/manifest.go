package kubernetes

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	yamlv3 "gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"stevedore/internal/reconcile"
)

// clusterScopedKinds lists the kinds the applier treats as
// cluster-scoped; these never receive a default namespace.
var clusterScopedKinds = map[string]bool{
	"Namespace":                true,
	"ClusterRole":              true,
	"ClusterRoleBinding":       true,
	"CustomResourceDefinition": true,
	"PersistentVolume":         true,
	"StorageClass":             true,
	"PriorityClass":            true,
}

// DecodeManifest parses one YAML manifest into an unstructured object
// and derives its identity. Namespaced objects without an explicit
// namespace get defaultNamespace before the identity (and therefore
// the lock key) is derived, so explicit and implicit references to the
// same effective namespace serialize together.
func DecodeManifest(data []byte, defaultNamespace string) (*unstructured.Unstructured, reconcile.Identity, error) {
	var identity reconcile.Identity

	count, err := countDocuments(data)
	if err != nil {
		return nil, identity, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if count > 1 {
		return nil, identity, fmt.Errorf("manifest must contain a single resource, found %d documents", count)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, identity, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	// UnmarshalJSON keeps integers as int64, which the unstructured
	// converter requires for typed integer fields.
	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(jsonData); err != nil {
		return nil, identity, fmt.Errorf("failed to decode manifest: %w", err)
	}

	if obj.GetNamespace() == "" && !clusterScopedKinds[obj.GetKind()] {
		obj.SetNamespace(defaultNamespace)
	}

	identity = reconcile.Identity{
		Kind:      obj.GetKind(),
		Namespace: obj.GetNamespace(),
		Name:      obj.GetName(),
	}
	return obj, identity, nil
}

// countDocuments counts the non-empty YAML documents in the input.
// The JSON conversion below would otherwise keep only the first
// document and silently drop the rest.
func countDocuments(data []byte) (int, error) {
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	count := 0
	for {
		var doc interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		if doc != nil {
			count++
		}
	}
}
