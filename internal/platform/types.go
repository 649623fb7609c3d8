package platform

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceRef locates one resource for a readiness read. Namespace is empty
// for cluster-scoped resources.
type ResourceRef struct {
	Group     string
	Version   string
	Resource  string
	Namespace string
	Name      string
}

// GVR returns the schema form of the reference.
func (r ResourceRef) GVR() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: r.Group, Version: r.Version, Resource: r.Resource}
}

// String renders the reference for logs and error messages.
func (r ResourceRef) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s %s", r.Group, r.Resource, r.Name)
	}
	return fmt.Sprintf("%s/%s %s/%s", r.Group, r.Resource, r.Namespace, r.Name)
}

// SecretKeyMissingError reports a secret that exists but lacks the requested
// field. Distinct from a NotFound so callers can tell "wrong name" apart
// from "right name, wrong shape".
type SecretKeyMissingError struct {
	Namespace string
	Name      string
	Key       string
}

func (e *SecretKeyMissingError) Error() string {
	return fmt.Sprintf("secret %s/%s has no key %q", e.Namespace, e.Name, e.Key)
}
