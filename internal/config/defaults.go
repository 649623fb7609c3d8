package config

import (
	"time"
)

// DefaultConfig returns the compiled defaults icdctl starts from before any
// file or environment overlay. Credential-bearing values are deliberately
// absent: they only ever come from the environment.
func DefaultConfig() Config {
	return Config{
		Cluster: ClusterConfig{
			Namespace: "intelligent-cd",
		},
		GitOps: GitOpsConfig{
			Namespace: "openshift-gitops",
			Username:  "admin",
			// Operator-managed name first, upstream name second.
			RouteCandidates: []string{"openshift-gitops-server", "argocd-server"},
			AdminSecrets: []SecretCandidate{
				{Name: "openshift-gitops-cluster", Key: "admin.password"},
				{Name: "argocd-initial-admin-secret", Key: "password"},
			},
		},
		Charts: ChartsConfig{
			Storage: "charts/storage",
			Tracing: "charts/tracing-operators",
			App:     "charts/intelligent-cd",
		},
		Tracing: TracingConfig{
			Namespace: "openshift-operators",
			CSVName:   "tempo-operator.v2.7.0",
		},
		Ingest: IngestConfig{
			Command:         []string{"python3", "pipelines/ingest-pipeline.py"},
			RouteCandidates: []string{"llamastack", "llama-stack"},
		},
		Polling: PollingConfig{
			Interval: 10 * time.Second,
			// StageTimeout stays zero: poll forever, show progress.
		},
	}
}
