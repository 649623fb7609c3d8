package pipeline

import (
	"fmt"
)

// ApplyFailedError reports a stage whose desired-state submission failed.
// Submission failures are always fatal to the run; the platform's own
// reconciliation is the only retry loop.
type ApplyFailedError struct {
	Stage string
	Err   error
}

func (e *ApplyFailedError) Error() string {
	return fmt.Sprintf("stage %q failed to apply: %v", e.Stage, e.Err)
}

func (e *ApplyFailedError) Unwrap() error {
	return e.Err
}

// ReadinessTimedOutError reports a blocking stage whose readiness condition
// did not hold within its timeout.
type ReadinessTimedOutError struct {
	Stage     string
	Condition string
}

func (e *ReadinessTimedOutError) Error() string {
	return fmt.Sprintf("stage %q timed out waiting for %s", e.Stage, e.Condition)
}

// DependencyError reports a stage sequenced before one of its declared
// predecessors. The shipped sequence is total-ordered by construction, so
// hitting this means the stage list itself is wrong.
type DependencyError struct {
	Stage   string
	Missing string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %q depends on %q which has not completed", e.Stage, e.Missing)
}
