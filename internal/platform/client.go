package platform

import (
	"context"
	"fmt"

	"icdctl/pkg/logging"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	k8syaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	_ "k8s.io/client-go/plugin/pkg/client/auth" // Important for various auth providers
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client is the cluster management API as the pipeline sees it.
type Client interface {
	// SecretField reads one key of a named secret. The value is returned
	// decoded (client-go handles the transport encoding).
	SecretField(ctx context.Context, namespace, name, key string) (string, error)

	// RouteHost returns the host of an OpenShift route.
	RouteHost(ctx context.Context, namespace, name string) (string, error)

	// BaseDomain returns the cluster ingress domain, resolved once per run
	// and reused when later stages build endpoint URLs.
	BaseDomain(ctx context.Context) (string, error)

	// ApplyManifest submits one rendered manifest document with
	// create-or-update semantics. Re-submitting identical or updated desired
	// state must not error. defaultNamespace applies when the document does
	// not carry its own.
	ApplyManifest(ctx context.Context, defaultNamespace string, doc []byte) error

	// ResourceField reads a single field of a live resource for a readiness
	// check. found is false when the field is absent; err reports query
	// failures (including the resource not existing yet).
	ResourceField(ctx context.Context, ref ResourceRef, path []string) (value string, found bool, err error)
}

var (
	routeGVR = schema.GroupVersionResource{Group: "route.openshift.io", Version: "v1", Resource: "routes"}

	clusterIngressRef = ResourceRef{
		Group: "config.openshift.io", Version: "v1", Resource: "ingresses", Name: "cluster",
	}
)

// clusterClient is the production Client backed by client-go.
type clusterClient struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
	mapper    meta.RESTMapper
}

// NewClient builds a Client for the given kubeconfig context. An empty
// context name means the kubeconfig's current context.
func NewClient(kubeContext string) (Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		configOverrides.CurrentContext = kubeContext
	}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get REST config for context %q: %w", kubeContext, err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return NewClientFromClients(clientset, dynamicClient, mapper), nil
}

// NewClientFromClients assembles a Client from pre-built clients. Tests use
// this with the client-go fakes and a static RESTMapper.
func NewClientFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface, mapper meta.RESTMapper) Client {
	return &clusterClient{clientset: clientset, dynamic: dynamicClient, mapper: mapper}
}

func (c *clusterClient) SecretField(ctx context.Context, namespace, name, key string) (string, error) {
	secret, err := c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}
	data, ok := secret.Data[key]
	if !ok {
		return "", &SecretKeyMissingError{Namespace: namespace, Name: name, Key: key}
	}
	return string(data), nil
}

func (c *clusterClient) RouteHost(ctx context.Context, namespace, name string) (string, error) {
	route, err := c.dynamic.Resource(routeGVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get route %s/%s: %w", namespace, name, err)
	}
	host, found, err := unstructured.NestedString(route.Object, "spec", "host")
	if err != nil || !found || host == "" {
		return "", fmt.Errorf("route %s/%s has no host", namespace, name)
	}
	return host, nil
}

func (c *clusterClient) BaseDomain(ctx context.Context) (string, error) {
	ingress, err := c.dynamic.Resource(clusterIngressRef.GVR()).Get(ctx, clusterIngressRef.Name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get cluster ingress config: %w", err)
	}
	domain, found, err := unstructured.NestedString(ingress.Object, "spec", "domain")
	if err != nil || !found || domain == "" {
		return "", fmt.Errorf("cluster ingress config has no domain")
	}
	return domain, nil
}

func (c *clusterClient) ApplyManifest(ctx context.Context, defaultNamespace string, doc []byte) error {
	var raw map[string]interface{}
	if err := k8syaml.Unmarshal(doc, &raw); err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}
	if len(raw) == 0 {
		return nil // empty document between separators
	}
	obj := &unstructured.Unstructured{Object: raw}

	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return fmt.Errorf("manifest document has no kind")
	}
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("failed to map %s to a resource: %w", gvk, err)
	}

	var ri dynamic.ResourceInterface
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		namespace := obj.GetNamespace()
		if namespace == "" {
			namespace = defaultNamespace
			obj.SetNamespace(namespace)
		}
		ri = c.dynamic.Resource(mapping.Resource).Namespace(namespace)
	} else {
		ri = c.dynamic.Resource(mapping.Resource)
	}

	_, err = ri.Create(ctx, obj, metav1.CreateOptions{FieldManager: fieldManager})
	if err == nil {
		logging.Debug("Platform", "Created %s %s", gvk.Kind, obj.GetName())
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create %s %s: %w", gvk.Kind, obj.GetName(), err)
	}

	// Already present: converge by updating in place.
	existing, err := ri.Get(ctx, obj.GetName(), metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get existing %s %s: %w", gvk.Kind, obj.GetName(), err)
	}
	obj.SetResourceVersion(existing.GetResourceVersion())
	if _, err := ri.Update(ctx, obj, metav1.UpdateOptions{FieldManager: fieldManager}); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", gvk.Kind, obj.GetName(), err)
	}
	logging.Debug("Platform", "Updated %s %s", gvk.Kind, obj.GetName())
	return nil
}

const fieldManager = "icdctl"

func (c *clusterClient) ResourceField(ctx context.Context, ref ResourceRef, path []string) (string, bool, error) {
	var ri dynamic.ResourceInterface
	if ref.Namespace != "" {
		ri = c.dynamic.Resource(ref.GVR()).Namespace(ref.Namespace)
	} else {
		ri = c.dynamic.Resource(ref.GVR())
	}
	obj, err := ri.Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return "", false, err
	}
	value, found, err := unstructured.NestedFieldNoCopy(obj.Object, path...)
	if err != nil {
		return "", false, fmt.Errorf("failed to read field of %s: %w", ref, err)
	}
	if !found || value == nil {
		return "", false, nil
	}
	return fmt.Sprintf("%v", value), true, nil
}

// IsTransientReadError reports whether a readiness read failed for a reason
// that just means "not there yet" rather than a broken query.
func IsTransientReadError(err error) bool {
	return apierrors.IsNotFound(err) || apierrors.IsServiceUnavailable(err) || apierrors.IsTimeout(err) || apierrors.IsServerTimeout(err) || apierrors.IsTooManyRequests(err)
}
