package pipeline

import (
	"context"
	"fmt"

	"icdctl/internal/config"
	"icdctl/internal/credentials"
	"icdctl/internal/platform"
	"icdctl/pkg/logging"
)

// ChartRenderer is the dry-render side of the chart tooling.
type ChartRenderer interface {
	Render(ctx context.Context, release, chartRef, namespace string, values map[string]string) ([][]byte, error)
}

// GitOpsAuthenticator derives a session token from the bootstrap secrets on
// the cluster.
type GitOpsAuthenticator interface {
	Login(ctx context.Context, cfg config.GitOpsConfig) (serverURL string, token credentials.Token, err error)
}

// RouteResolver resolves a service URL by probing candidate route names.
type RouteResolver interface {
	ResolveServerURL(ctx context.Context, namespace string, candidates []string) (string, error)
}

// JobRunner invokes the external ingestion job.
type JobRunner interface {
	Run(ctx context.Context, endpointURL string, token credentials.Token) error
}

// ManifestAction renders a chart with values pulled from the RunContext and
// submits every document through the platform's create-or-update apply.
type ManifestAction struct {
	Renderer  ChartRenderer
	Platform  platform.Client
	Release   string
	ChartRef  string
	Namespace string
	// Values resolves the override map at apply time, so it can read
	// credentials and endpoints earlier stages put into the RunContext.
	Values func(rc *RunContext) map[string]string
}

func (a *ManifestAction) Apply(ctx context.Context, rc *RunContext) error {
	values := map[string]string{}
	if a.Values != nil {
		values = a.Values(rc)
	}
	docs, err := a.Renderer.Render(ctx, a.Release, a.ChartRef, a.Namespace, values)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := a.Platform.ApplyManifest(ctx, a.Namespace, doc); err != nil {
			return err
		}
	}
	logging.Debug("Pipeline", "Submitted %d document(s) for release %s", len(docs), a.Release)
	return nil
}

// Keys under which the GitOps credential stage stores what it resolved.
const (
	GitOpsTokenKey    = "gitops-token"
	GitOpsEndpointKey = "gitops"
)

// CredentialAction runs the credential resolver and appends the session
// token and server endpoint to the RunContext for later stages.
type CredentialAction struct {
	Authenticator GitOpsAuthenticator
}

func (a *CredentialAction) Apply(ctx context.Context, rc *RunContext) error {
	serverURL, token, err := a.Authenticator.Login(ctx, rc.Config.GitOps)
	if err != nil {
		return err
	}
	rc.Endpoints[GitOpsEndpointKey] = serverURL
	rc.Credentials[GitOpsTokenKey] = token
	return nil
}

// IngestJobAction resolves the ingestion service endpoint and hands off to
// the external job with the model API token. The job's exit code decides
// success.
type IngestJobAction struct {
	Routes RouteResolver
	Runner JobRunner
}

func (a *IngestJobAction) Apply(ctx context.Context, rc *RunContext) error {
	endpointURL, err := a.Routes.ResolveServerURL(ctx, rc.Config.Cluster.Namespace, rc.Config.Ingest.RouteCandidates)
	if err != nil {
		return fmt.Errorf("failed to resolve ingestion endpoint: %w", err)
	}
	return a.Runner.Run(ctx, endpointURL, credentials.NewToken(rc.Config.Model.Token))
}
