package pipeline

import (
	"icdctl/internal/config"
	"icdctl/internal/platform"
	"icdctl/internal/readiness"
)

// Stage names, in execution order.
const (
	StageStorage    = "storage"
	StageTracing    = "tracing-operators"
	StageLogin      = "gitops-login"
	StageHelmDeploy = "helm-deploy"
	StageIngest     = "ingest-pipeline"
)

const appReleaseName = "intelligent-cd"

// Dependencies are the collaborators the stage actions run against.
type Dependencies struct {
	Platform      platform.Client
	Renderer      ChartRenderer
	Authenticator GitOpsAuthenticator
	Routes        RouteResolver
	Ingest        JobRunner
}

// DefaultStages builds the shipped deployment sequence. The list is static:
// stage order, dependency edges, and readiness targets are fixed at startup
// and immutable for the run.
func DefaultStages(cfg config.Config, deps Dependencies) []Stage {
	interval := cfg.Polling.Interval
	timeout := cfg.Polling.StageTimeout

	return []Stage{
		{
			Name:     StageStorage,
			Blocking: true,
			Action: &ManifestAction{
				Renderer:  deps.Renderer,
				Platform:  deps.Platform,
				Release:   "storage",
				ChartRef:  cfg.Charts.Storage,
				Namespace: cfg.Cluster.Namespace,
			},
			Readiness: &readiness.Condition{
				Target: platform.ResourceRef{
					Group: "apps", Version: "v1", Resource: "deployments",
					Namespace: cfg.Cluster.Namespace, Name: "minio",
				},
				FieldPath: []string{"status", "readyReplicas"},
				Predicate: readiness.FieldNonEmpty,
				Interval:  interval,
				Timeout:   timeout,
			},
		},
		{
			Name:      StageTracing,
			DependsOn: []string{StageStorage},
			Blocking:  true,
			Action: &ManifestAction{
				Renderer:  deps.Renderer,
				Platform:  deps.Platform,
				Release:   "tracing-operators",
				ChartRef:  cfg.Charts.Tracing,
				Namespace: cfg.Tracing.Namespace,
			},
			Readiness: &readiness.Condition{
				Target: platform.ResourceRef{
					Group: "operators.coreos.com", Version: "v1alpha1", Resource: "clusterserviceversions",
					Namespace: cfg.Tracing.Namespace, Name: cfg.Tracing.CSVName,
				},
				FieldPath: []string{"status", "phase"},
				Predicate: readiness.PhaseSucceeded,
				Interval:  interval,
				Timeout:   timeout,
			},
		},
		{
			Name:      StageLogin,
			DependsOn: []string{StageTracing},
			Blocking:  true,
			Action:    &CredentialAction{Authenticator: deps.Authenticator},
		},
		{
			Name:      StageHelmDeploy,
			DependsOn: []string{StageLogin},
			Blocking:  true,
			Action: &ManifestAction{
				Renderer:  deps.Renderer,
				Platform:  deps.Platform,
				Release:   appReleaseName,
				ChartRef:  cfg.Charts.App,
				Namespace: cfg.Cluster.Namespace,
				Values:    appChartValues,
			},
			Readiness: &readiness.Condition{
				Target: platform.ResourceRef{
					Group: "argoproj.io", Version: "v1alpha1", Resource: "applications",
					Namespace: cfg.GitOps.Namespace, Name: appReleaseName,
				},
				FieldPath: []string{"status", "health", "status"},
				Predicate: readiness.FieldEquals,
				Expected:  "Healthy",
				Interval:  interval,
				Timeout:   timeout,
			},
		},
		{
			Name:      StageIngest,
			DependsOn: []string{StageHelmDeploy},
			Blocking:  true,
			Action:    &IngestJobAction{Routes: deps.Routes, Runner: deps.Ingest},
		},
	}
}

// appChartValues assembles the application chart overrides from the
// configuration plus everything earlier stages resolved: the cluster base
// domain and the GitOps endpoint and session token the deployed app uses to
// talk to the controller.
func appChartValues(rc *RunContext) map[string]string {
	values := map[string]string{
		"model.url":       rc.Config.Model.URL,
		"model.name":      rc.Config.Model.Name,
		"model.apiToken":  rc.Config.Model.Token,
		"cluster.domain":  rc.BaseDomain,
		"gitops.server":   rc.Endpoints[GitOpsEndpointKey],
		"gitops.username": rc.Config.GitOps.Username,
	}
	if token, ok := rc.Credentials[GitOpsTokenKey]; ok {
		values["gitops.token"] = token.Reveal()
	}
	return values
}
