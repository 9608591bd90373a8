package tools

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"stevedore/internal/api"
	"stevedore/internal/kubernetes"
	"stevedore/internal/locking"
	"stevedore/internal/reconcile"
	"stevedore/pkg/logging"
)

const kubernetesToolsSubsystem = "KubernetesTools"

// KubernetesProvider implements api.ToolProvider for cluster
// operations.
type KubernetesProvider struct {
	applier          *kubernetes.Applier
	backend          *kubernetes.ManifestBackend
	locks            *locking.Registry
	timeouts         TimeoutSource
	defaultNamespace string
}

// NewKubernetesProvider creates the Kubernetes tool provider.
func NewKubernetesProvider(applier *kubernetes.Applier, locks *locking.Registry, timeouts TimeoutSource, defaultNamespace string) *KubernetesProvider {
	return &KubernetesProvider{
		applier:          applier,
		backend:          kubernetes.NewManifestBackend(applier),
		locks:            locks,
		timeouts:         timeouts,
		defaultNamespace: defaultNamespace,
	}
}

// GetTools returns metadata for all Kubernetes tools.
func (p *KubernetesProvider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		{
			Name:        "apply_manifest",
			Description: "Create or update a Kubernetes resource from a YAML manifest",
			Args: []api.ArgMetadata{
				{
					Name:        "manifest",
					Type:        "string",
					Required:    true,
					Description: "YAML manifest of a single resource",
				},
			},
		},
		{
			Name:        "get_resource",
			Description: "Fetch a Kubernetes resource",
			Args: []api.ArgMetadata{
				{
					Name:        "kind",
					Type:        "string",
					Required:    true,
					Description: "Resource kind, e.g. Deployment",
				},
				{
					Name:        "name",
					Type:        "string",
					Required:    true,
					Description: "Resource name",
				},
				{
					Name:        "api_version",
					Type:        "string",
					Required:    false,
					Description: "API version, e.g. apps/v1 (default: v1)",
					Default:     "v1",
				},
				{
					Name:        "namespace",
					Type:        "string",
					Required:    false,
					Description: "Namespace (default: the configured default namespace)",
				},
			},
		},
		{
			Name:        "cluster_ping",
			Description: "Check that the Kubernetes API server is reachable",
			Args:        []api.ArgMetadata{},
		},
	}
}

// ExecuteTool executes a Kubernetes tool by name.
func (p *KubernetesProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	logging.Debug(kubernetesToolsSubsystem, "Executing tool %s", toolName)

	switch toolName {
	case "apply_manifest":
		return p.handleApplyManifest(ctx, args)
	case "get_resource":
		return p.handleGetResource(ctx, args)
	case "cluster_ping":
		return p.handleClusterPing(ctx)
	default:
		return nil, &api.NotFoundError{
			ResourceType: "tool",
			ResourceName: toolName,
			Message:      fmt.Sprintf("unknown kubernetes tool: %s", toolName),
		}
	}
}

func (p *KubernetesProvider) handleApplyManifest(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	manifest := stringArg(args, "manifest")
	if manifest == "" {
		return errorResult("manifest argument is required"), nil
	}

	obj, identity, err := kubernetes.DecodeManifest([]byte(manifest), p.defaultNamespace)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid manifest: %v", err)), nil
	}

	key := kubernetes.ResourceKey(identity)

	var outcome reconcile.Outcome[*unstructured.Unstructured]
	err = p.locks.WithLock(ctx, key, p.timeouts.LockTimeout(), func() error {
		var applyErr error
		outcome, applyErr = reconcile.Apply(ctx, identity, obj, p.backend)
		return applyErr
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Apply failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"created":   outcome.Created,
		"kind":      identity.Kind,
		"namespace": identity.Namespace,
		"name":      identity.Name,
	}), nil
}

func (p *KubernetesProvider) handleGetResource(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	kind := stringArg(args, "kind")
	name := stringArg(args, "name")
	if kind == "" || name == "" {
		return errorResult("kind and name arguments are required"), nil
	}

	apiVersion := stringArg(args, "api_version")
	if apiVersion == "" {
		apiVersion = "v1"
	}
	namespace := stringArg(args, "namespace")
	if namespace == "" {
		namespace = p.defaultNamespace
	}

	obj, err := p.applier.Get(ctx, apiVersion, kind, namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return errorResult(fmt.Sprintf("%s %s/%s not found", kind, namespace, name)), nil
		}
		return errorResult(fmt.Sprintf("Failed to get %s %s/%s: %v", kind, namespace, name, err)), nil
	}

	return jsonResult(obj.Object), nil
}

func (p *KubernetesProvider) handleClusterPing(ctx context.Context) (*api.CallToolResult, error) {
	version, err := p.applier.ServerVersion(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("Cluster not reachable: %v", err)), nil
	}
	return textResult(fmt.Sprintf("Cluster reachable, server version %s", version)), nil
}
