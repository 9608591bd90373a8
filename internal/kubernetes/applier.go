package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"stevedore/internal/reconcile"
	"stevedore/pkg/logging"
)

const kubernetesSubsystem = "Kubernetes"

// Applier performs create and patch operations against the cluster.
// Kinds with a typed method pair dispatch statically; everything else
// goes through the generic unstructured pair.
//
// Errors from the API server are returned unwrapped so callers can
// classify them with apierrors helpers.
type Applier struct {
	clients *Clients
}

// NewApplier creates an applier over the given clients.
func NewApplier(clients *Clients) *Applier {
	return &Applier{clients: clients}
}

// Create creates the resource, dispatching on its kind.
func (a *Applier) Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	switch obj.GetKind() {
	case "Deployment":
		return a.createDeployment(ctx, obj)
	case "Service":
		return a.createService(ctx, obj)
	case "ConfigMap":
		return a.createConfigMap(ctx, obj)
	case "Secret":
		return a.createSecret(ctx, obj)
	case "Namespace":
		return a.createNamespace(ctx, obj)
	default:
		logging.Debug(kubernetesSubsystem, "No typed pair for kind %s, using generic create", obj.GetKind())
		return a.createGeneric(ctx, obj)
	}
}

// Patch updates an existing resource with a merge patch of the desired
// state, dispatching on the identity's kind. Merge patches carry no
// resourceVersion, so no read is needed before the write.
func (a *Applier) Patch(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	switch identity.Kind {
	case "Deployment":
		return a.patchDeployment(ctx, identity, obj)
	case "Service":
		return a.patchService(ctx, identity, obj)
	case "ConfigMap":
		return a.patchConfigMap(ctx, identity, obj)
	case "Secret":
		return a.patchSecret(ctx, identity, obj)
	case "Namespace":
		return a.patchNamespace(ctx, identity, obj)
	default:
		logging.Debug(kubernetesSubsystem, "No typed pair for kind %s, using generic patch", identity.Kind)
		return a.patchGeneric(ctx, obj)
	}
}

// Get fetches an arbitrary resource through the generic client.
// Read-only; never takes a lock.
func (a *Applier) Get(ctx context.Context, apiVersion, kind, namespace, name string) (*unstructured.Unstructured, error) {
	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid apiVersion %q: %w", apiVersion, err)
	}

	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(gv.WithKind(kind))

	key := ctrlclient.ObjectKey{Namespace: namespace, Name: name}
	if err := a.clients.Generic.Get(ctx, key, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// ServerVersion asks the API server for its version. Read-only; never
// takes a lock.
func (a *Applier) ServerVersion(ctx context.Context) (string, error) {
	info, err := a.clients.Typed.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("cluster not reachable: %w", err)
	}
	return info.GitVersion, nil
}

// --- Deployment ---

func (a *Applier) createDeployment(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	var deployment appsv1.Deployment
	if err := fromUnstructured(obj, &deployment); err != nil {
		return nil, err
	}
	created, err := a.clients.Typed.AppsV1().Deployments(obj.GetNamespace()).Create(ctx, &deployment, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(created)
}

func (a *Applier) patchDeployment(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	patched, err := a.clients.Typed.AppsV1().Deployments(identity.Namespace).Patch(ctx, identity.Name, types.MergePatchType, body, metav1.PatchOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(patched)
}

// --- Service ---

func (a *Applier) createService(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	var service corev1.Service
	if err := fromUnstructured(obj, &service); err != nil {
		return nil, err
	}
	created, err := a.clients.Typed.CoreV1().Services(obj.GetNamespace()).Create(ctx, &service, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(created)
}

func (a *Applier) patchService(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	patched, err := a.clients.Typed.CoreV1().Services(identity.Namespace).Patch(ctx, identity.Name, types.MergePatchType, body, metav1.PatchOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(patched)
}

// --- ConfigMap ---

func (a *Applier) createConfigMap(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	var configMap corev1.ConfigMap
	if err := fromUnstructured(obj, &configMap); err != nil {
		return nil, err
	}
	created, err := a.clients.Typed.CoreV1().ConfigMaps(obj.GetNamespace()).Create(ctx, &configMap, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(created)
}

func (a *Applier) patchConfigMap(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	patched, err := a.clients.Typed.CoreV1().ConfigMaps(identity.Namespace).Patch(ctx, identity.Name, types.MergePatchType, body, metav1.PatchOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(patched)
}

// --- Secret ---

func (a *Applier) createSecret(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	var secret corev1.Secret
	if err := fromUnstructured(obj, &secret); err != nil {
		return nil, err
	}
	created, err := a.clients.Typed.CoreV1().Secrets(obj.GetNamespace()).Create(ctx, &secret, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(created)
}

func (a *Applier) patchSecret(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	patched, err := a.clients.Typed.CoreV1().Secrets(identity.Namespace).Patch(ctx, identity.Name, types.MergePatchType, body, metav1.PatchOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(patched)
}

// --- Namespace (cluster-scoped) ---

func (a *Applier) createNamespace(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	var namespace corev1.Namespace
	if err := fromUnstructured(obj, &namespace); err != nil {
		return nil, err
	}
	created, err := a.clients.Typed.CoreV1().Namespaces().Create(ctx, &namespace, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(created)
}

func (a *Applier) patchNamespace(ctx context.Context, identity reconcile.Identity, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	patched, err := a.clients.Typed.CoreV1().Namespaces().Patch(ctx, identity.Name, types.MergePatchType, body, metav1.PatchOptions{})
	if err != nil {
		return nil, err
	}
	return toUnstructured(patched)
}

// --- Generic fallback ---

func (a *Applier) createGeneric(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	target := obj.DeepCopy()
	if err := a.clients.Generic.Create(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (a *Applier) patchGeneric(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	body, err := mergePatchBody(obj)
	if err != nil {
		return nil, err
	}
	target := obj.DeepCopy()
	if err := a.clients.Generic.Patch(ctx, target, ctrlclient.RawPatch(types.MergePatchType, body)); err != nil {
		return nil, err
	}
	return target, nil
}

// --- conversion helpers ---

func fromUnstructured[T any](obj *unstructured.Unstructured, out *T) error {
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, out); err != nil {
		return fmt.Errorf("manifest does not match %s schema: %w", obj.GetKind(), err)
	}
	return nil
}

func toUnstructured(obj interface{}) (*unstructured.Unstructured, error) {
	raw, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert observed object: %w", err)
	}
	return &unstructured.Unstructured{Object: raw}, nil
}

func mergePatchBody(obj *unstructured.Unstructured) ([]byte, error) {
	body, err := json.Marshal(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch body: %w", err)
	}
	return body, nil
}
