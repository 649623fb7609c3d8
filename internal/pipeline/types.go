package pipeline

import (
	"context"

	"icdctl/internal/config"
	"icdctl/internal/credentials"
	"icdctl/internal/readiness"
)

// Action is one stage's unit of desired-state application. Implementations
// must be safe to re-run: applying the same desired state twice converges to
// the same result without error.
type Action interface {
	Apply(ctx context.Context, rc *RunContext) error
}

// Stage is one unit of the deployment sequence: an apply action, an optional
// readiness gate, and the names of the stages that must have completed
// first. Stages are constructed once at startup and never change during a
// run.
type Stage struct {
	Name      string
	Action    Action
	Readiness *readiness.Condition
	DependsOn []string
	// Blocking decides whether a readiness timeout is fatal. Every shipped
	// stage blocks; the flag exists so a future stage can opt out.
	Blocking bool
}

// StageResult reports what one stage achieved.
type StageResult struct {
	Applied bool
	Ready   bool
}

// PipelineResult aggregates a run: the stages that completed in order, their
// results, and the stage that stopped the run, if any.
type PipelineResult struct {
	Completed []string
	Results   map[string]StageResult
	Failed    string
}

// RunContext carries everything stages share: the immutable configuration,
// credentials appended as stages derive them, and endpoints resolved once
// and reused. It is owned by the orchestrator and passed by pointer into
// each stage; execution is sequential, so no locking is needed.
type RunContext struct {
	Config      config.Config
	Credentials map[string]credentials.Token
	Endpoints   map[string]string
	BaseDomain  string
}

// NewRunContext builds a RunContext around a resolved configuration.
func NewRunContext(cfg config.Config) *RunContext {
	return &RunContext{
		Config:      cfg,
		Credentials: make(map[string]credentials.Token),
		Endpoints:   make(map[string]string),
	}
}
