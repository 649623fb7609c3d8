package readiness

import (
	"fmt"
	"time"

	"icdctl/internal/platform"
)

// Predicate is the test applied to the observed field value.
type Predicate int

const (
	// FieldEquals is ready when the field equals Expected.
	FieldEquals Predicate = iota
	// FieldNonEmpty is ready when the field is present and not empty.
	FieldNonEmpty
	// PhaseSucceeded is ready when the field reads "Succeeded" and fails
	// terminally when the platform reports an explicit failure phase.
	PhaseSucceeded
)

func (p Predicate) String() string {
	switch p {
	case FieldEquals:
		return "equals"
	case FieldNonEmpty:
		return "non-empty"
	case PhaseSucceeded:
		return "phase-succeeded"
	default:
		return "unknown"
	}
}

// Condition is a predicate over live platform state. It is evaluated by
// re-querying the platform each tick; the only state it carries between
// ticks is the last observed value, for log output.
type Condition struct {
	Target    platform.ResourceRef
	FieldPath []string
	Predicate Predicate
	Expected  string // only for FieldEquals
	Interval  time.Duration
	Timeout   time.Duration // 0 means poll without bound
}

func (c Condition) describe() string {
	switch c.Predicate {
	case FieldEquals:
		return fmt.Sprintf("%s %v == %q", c.Target, c.FieldPath, c.Expected)
	case PhaseSucceeded:
		return fmt.Sprintf("%s %v reaches Succeeded", c.Target, c.FieldPath)
	default:
		return fmt.Sprintf("%s %v is set", c.Target, c.FieldPath)
	}
}

// Outcome is the terminal state of one Await call.
type Outcome int

const (
	// Ready means the condition predicate held.
	Ready Outcome = iota
	// TimedOut means a finite timeout elapsed before the predicate held.
	TimedOut
	// Failed means the resource reported a terminal failure state; the
	// accompanying error is a ConditionFailedError.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Ready:
		return "Ready"
	case TimedOut:
		return "TimedOut"
	case Failed:
		return "Failed"
	default:
		return "unknown"
	}
}

// ConditionFailedError reports a resource that verifiably failed: the
// platform says it will never converge, so polling further is pointless.
// Operators should read this as "needs intervention", not "still converging".
type ConditionFailedError struct {
	Target   platform.ResourceRef
	Observed string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("%s reported terminal state %q", e.Target, e.Observed)
}
