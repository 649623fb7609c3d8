package config

import (
	"time"
)

// Config is the fully resolved configuration for a single icdctl run.
// It is immutable after Load returns.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Cluster ClusterConfig `yaml:"cluster"`
	GitOps  GitOpsConfig  `yaml:"gitops"`
	Charts  ChartsConfig  `yaml:"charts"`
	Tracing TracingConfig `yaml:"tracing"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Polling PollingConfig `yaml:"polling"`
}

// ModelConfig carries the model API inputs handed to the deployed
// application. Token is required and never defaulted.
type ModelConfig struct {
	URL   string `yaml:"url"`
	Name  string `yaml:"name"`
	Token string `yaml:"-"` // environment only; never read from or written to a file
}

// ClusterConfig identifies where the stack is deployed.
type ClusterConfig struct {
	// KubeContext selects the kubeconfig context. Empty means the current one.
	KubeContext string `yaml:"kubeContext,omitempty"`
	// Namespace is the application namespace.
	Namespace string `yaml:"namespace"`
}

// SecretCandidate names a secret and the key within it to read.
type SecretCandidate struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

// GitOpsConfig describes how to reach the GitOps controller and obtain a
// session token. Route and secret names vary between the operator-managed
// and upstream installations, so both are probed in order.
type GitOpsConfig struct {
	Namespace       string            `yaml:"namespace"`
	Username        string            `yaml:"username"`
	RouteCandidates []string          `yaml:"routeCandidates"`
	AdminSecrets    []SecretCandidate `yaml:"adminSecrets"`
}

// ChartsConfig holds the chart references rendered per stage.
type ChartsConfig struct {
	Storage string `yaml:"storage"`
	Tracing string `yaml:"tracing"`
	App     string `yaml:"app"`
}

// TracingConfig pins the operator install the tracing stage waits for.
// OLM derives the CSV name from the subscribed channel, so it has to be
// stated here rather than discovered.
type TracingConfig struct {
	Namespace string `yaml:"namespace"`
	CSVName   string `yaml:"csvName"`
}

// IngestConfig describes the external document-ingestion job. The command
// is opaque to icdctl: it receives the service endpoint and a bearer token
// and its exit code decides success.
type IngestConfig struct {
	Command         []string `yaml:"command"`
	RouteCandidates []string `yaml:"routeCandidates"`
}

// PollingConfig tunes the readiness prober. A zero StageTimeout means
// poll without bound.
type PollingConfig struct {
	Interval     time.Duration `yaml:"interval"`
	StageTimeout time.Duration `yaml:"stageTimeout,omitempty"`
}
