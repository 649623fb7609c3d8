package credentials

import (
	"fmt"
	"strings"
)

// EndpointNotFoundError is returned only after every candidate resource name
// was probed and none matched.
type EndpointNotFoundError struct {
	Kind       string // "route" or "secret"
	Namespace  string
	Candidates []string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("no %s found in %s (tried %s)", e.Kind, e.Namespace, strings.Join(e.Candidates, ", "))
}

// CredentialExchangeFailedError reports a session exchange that the endpoint
// rejected at the HTTP level.
type CredentialExchangeFailedError struct {
	Endpoint   string
	StatusCode int
}

func (e *CredentialExchangeFailedError) Error() string {
	return fmt.Sprintf("credential exchange against %s failed with status %d", e.Endpoint, e.StatusCode)
}

// CredentialResponseMalformedError reports a session response that parsed but
// did not carry the expected token field.
type CredentialResponseMalformedError struct {
	Endpoint string
}

func (e *CredentialResponseMalformedError) Error() string {
	return fmt.Sprintf("credential response from %s has no token field", e.Endpoint)
}
