package pipeline

import (
	"context"
	"fmt"

	"icdctl/pkg/logging"
)

// Orchestrator walks the stage list strictly sequentially. No stage begins
// before its predecessor's result is fully resolved, and the first failure
// halts the run: later stages are never invoked and nothing is rolled back
// (the platform's reconciler holds partially-applied state safely).
type Orchestrator struct {
	runner StageRunner
}

// NewOrchestrator builds an Orchestrator around a StageRunner.
func NewOrchestrator(runner StageRunner) *Orchestrator {
	return &Orchestrator{runner: runner}
}

// Execute runs the stages in declared order against the shared RunContext.
// Running it twice against an already-converged target is a no-op apart
// from re-deriving credentials and re-confirming readiness.
func (o *Orchestrator) Execute(ctx context.Context, stages []Stage, rc *RunContext) (PipelineResult, error) {
	result := PipelineResult{Results: make(map[string]StageResult)}
	completed := make(map[string]bool, len(stages))

	for _, stage := range stages {
		// Ordering invariant: every declared predecessor already finished.
		for _, dep := range stage.DependsOn {
			if !completed[dep] {
				result.Failed = stage.Name
				return result, &DependencyError{Stage: stage.Name, Missing: dep}
			}
		}

		stageResult, err := o.runner.Run(ctx, stage, rc)
		result.Results[stage.Name] = stageResult
		if err != nil {
			result.Failed = stage.Name
			logging.Error("Pipeline", err, "Stage %s failed, halting", stage.Name)
			return result, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		completed[stage.Name] = true
		result.Completed = append(result.Completed, stage.Name)
		logging.Info("Pipeline", "Stage %s complete (%d/%d)", stage.Name, len(result.Completed), len(stages))
	}

	logging.Info("Pipeline", "All %d stages converged", len(stages))
	return result, nil
}
