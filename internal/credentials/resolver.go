package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"icdctl/internal/config"
	"icdctl/internal/platform"
	"icdctl/pkg/logging"

	"github.com/hashicorp/go-retryablehttp"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Resolver derives short-lived session tokens from bootstrap secrets already
// present on the cluster. Installation variants name the GitOps route and
// admin secret differently, so the resolver probes an ordered candidate list
// and takes the first match.
type Resolver struct {
	platform platform.Client
	http     *retryablehttp.Client
}

// NewResolver builds a Resolver on top of the given platform client.
//
// The HTTP client retries transport-level failures only. Any HTTP response,
// success or not, counts as the single exchange attempt: callers that want
// more retry the whole call.
func NewResolver(pc platform.Client) *Resolver {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	client.HTTPClient.Timeout = 30 * time.Second
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}
	return &Resolver{platform: pc, http: client}
}

// ResolveServerURL probes the candidate route names in order and returns the
// URL of the first route that exists.
func (r *Resolver) ResolveServerURL(ctx context.Context, namespace string, candidates []string) (string, error) {
	for _, name := range candidates {
		host, err := r.platform.RouteHost(ctx, namespace, name)
		if err != nil {
			if apierrors.IsNotFound(err) {
				logging.Debug("Credentials", "Route %s/%s not found, trying next candidate", namespace, name)
				continue
			}
			return "", fmt.Errorf("failed to probe route %s/%s: %w", namespace, name, err)
		}
		logging.Debug("Credentials", "Resolved server route %s/%s -> %s", namespace, name, host)
		return "https://" + host, nil
	}
	return "", &EndpointNotFoundError{Kind: "route", Namespace: namespace, Candidates: candidates}
}

// ResolveBootstrapPassword probes the candidate admin secrets in order and
// returns the first password found.
func (r *Resolver) ResolveBootstrapPassword(ctx context.Context, namespace string, candidates []config.SecretCandidate) (string, error) {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
		password, err := r.platform.SecretField(ctx, namespace, c.Name, c.Key)
		if err != nil {
			var keyMissing *platform.SecretKeyMissingError
			if apierrors.IsNotFound(err) || errors.As(err, &keyMissing) {
				logging.Debug("Credentials", "Secret %s/%s (key %s) not usable, trying next candidate", namespace, c.Name, c.Key)
				continue
			}
			return "", fmt.Errorf("failed to probe secret %s/%s: %w", namespace, c.Name, err)
		}
		return password, nil
	}
	return "", &EndpointNotFoundError{Kind: "secret", Namespace: namespace, Candidates: names}
}

type sessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

// DeriveToken performs one login exchange against the session API: POST
// <baseURL>/api/v1/session with the bootstrap password, returning the
// session token from the response body.
func (r *Resolver) DeriveToken(ctx context.Context, baseURL, username, password string) (Token, error) {
	endpoint := baseURL + "/api/v1/session"

	body, err := json.Marshal(sessionRequest{Username: username, Password: password})
	if err != nil {
		return Token{}, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("session request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, &CredentialExchangeFailedError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Token{}, &CredentialResponseMalformedError{Endpoint: endpoint}
	}
	if session.Token == "" {
		return Token{}, &CredentialResponseMalformedError{Endpoint: endpoint}
	}

	token := NewToken(session.Token)
	logging.Info("Credentials", "Derived session token %s from %s", token, endpoint)
	return token, nil
}

// Login resolves the GitOps server endpoint and bootstrap password, then
// exchanges them for a session token. This is the whole credential path the
// two installer variants used to duplicate.
func (r *Resolver) Login(ctx context.Context, cfg config.GitOpsConfig) (serverURL string, token Token, err error) {
	serverURL, err = r.ResolveServerURL(ctx, cfg.Namespace, cfg.RouteCandidates)
	if err != nil {
		return "", Token{}, err
	}
	password, err := r.ResolveBootstrapPassword(ctx, cfg.Namespace, cfg.AdminSecrets)
	if err != nil {
		return "", Token{}, err
	}
	token, err = r.DeriveToken(ctx, serverURL, cfg.Username, password)
	if err != nil {
		return "", Token{}, err
	}
	return serverURL, token, nil
}
