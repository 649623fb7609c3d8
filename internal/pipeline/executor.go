package pipeline

import (
	"context"

	"icdctl/internal/readiness"
	"icdctl/pkg/logging"
)

// StageRunner executes a single stage. The orchestrator only knows this
// interface; tests substitute a fake to observe sequencing.
type StageRunner interface {
	Run(ctx context.Context, stage Stage, rc *RunContext) (StageResult, error)
}

// Executor is the production StageRunner: apply the stage's desired state,
// then block on its readiness condition when it declares one.
type Executor struct {
	prober *readiness.Prober
}

// NewExecutor builds an Executor around a readiness prober.
func NewExecutor(prober *readiness.Prober) *Executor {
	return &Executor{prober: prober}
}

// Run applies the stage and waits for readiness. Submission failure is
// always fatal (ApplyFailedError). A readiness timeout is fatal only for
// blocking stages; a non-blocking stage proceeds with a warning and
// Ready=false in its result.
func (e *Executor) Run(ctx context.Context, stage Stage, rc *RunContext) (StageResult, error) {
	logging.Info("Pipeline", "Stage %s: applying desired state", stage.Name)

	// An in-flight apply is allowed to finish even if the operator
	// interrupts the run; tearing it down mid-submission could leave the
	// platform half-applied. Cancellation takes effect between poll ticks.
	if err := stage.Action.Apply(context.WithoutCancel(ctx), rc); err != nil {
		return StageResult{}, &ApplyFailedError{Stage: stage.Name, Err: err}
	}

	result := StageResult{Applied: true, Ready: true}
	if stage.Readiness == nil {
		return result, nil
	}

	outcome, err := e.prober.Await(ctx, *stage.Readiness)
	if err != nil {
		return StageResult{Applied: true}, err
	}
	if outcome == readiness.TimedOut {
		if stage.Blocking {
			return StageResult{Applied: true}, &ReadinessTimedOutError{Stage: stage.Name, Condition: stage.Readiness.Target.String()}
		}
		logging.Warn("Pipeline", "Stage %s: readiness timed out, proceeding (non-blocking)", stage.Name)
		result.Ready = false
	}
	return result, nil
}
