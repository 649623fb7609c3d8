package readiness

import (
	"context"
	"fmt"

	"icdctl/internal/platform"
	"icdctl/pkg/logging"

	"k8s.io/utils/clock"
)

// Reader is the one platform call the prober needs.
type Reader interface {
	ResourceField(ctx context.Context, ref platform.ResourceRef, path []string) (value string, found bool, err error)
}

// Prober polls a Condition until it holds, a finite timeout elapses, or the
// resource reports a terminal failure. The clock is injectable so timeout
// behavior is tested without wall-clock delays.
type Prober struct {
	reader Reader
	clock  clock.Clock
}

// NewProber builds a Prober on the real clock.
func NewProber(reader Reader) *Prober {
	return NewProberWithClock(reader, clock.RealClock{})
}

// NewProberWithClock builds a Prober with an explicit clock (tests pass a
// fake).
func NewProberWithClock(reader Reader, clk clock.Clock) *Prober {
	return &Prober{reader: reader, clock: clk}
}

// Await runs the Polling -> Ready | TimedOut state machine. It always
// performs at least one poll, emits one progress line per tick, and treats
// read errors as "not ready yet": a resource that does not exist yet is
// normal convergence, and a failed query must not be mistaken for an empty
// field. Only an explicit terminal phase aborts with ConditionFailedError.
//
// Cancellation is honored between ticks via ctx.
func (p *Prober) Await(ctx context.Context, cond Condition) (Outcome, error) {
	deadline := p.clock.Now().Add(cond.Timeout)
	finite := cond.Timeout > 0

	logging.Info("Readiness", "Waiting until %s (interval %s)", cond.describe(), cond.Interval)

	for attempt := 1; ; attempt++ {
		value, found, err := p.reader.ResourceField(ctx, cond.Target, cond.FieldPath)

		ready := false
		switch {
		case err != nil:
			// Not ready. A missing resource is routine; anything else is
			// logged louder so a broken query does not hide forever.
			if platform.IsTransientReadError(err) {
				logging.Debug("Readiness", "[%d] %s not created yet", attempt, cond.Target)
			} else {
				logging.Warn("Readiness", "[%d] query for %s failed: %v", attempt, cond.Target, err)
			}
		case !found, value == "":
			// Present but the field is empty or absent. Distinct from a
			// failed query: the read worked, the platform just has nothing
			// to report yet.
			logging.Info("Readiness", "[%d] %s: field %v empty, not ready", attempt, cond.Target, cond.FieldPath)
		default:
			switch cond.Predicate {
			case FieldEquals:
				ready = value == cond.Expected
			case FieldNonEmpty:
				ready = true
			case PhaseSucceeded:
				if isTerminalPhase(value) {
					return Failed, &ConditionFailedError{Target: cond.Target, Observed: value}
				}
				ready = value == "Succeeded"
			}
			if !ready {
				logging.Info("Readiness", "[%d] %s: observed %q, not ready", attempt, cond.Target, value)
			}
		}

		if ready {
			logging.Info("Readiness", "%s is ready after %d poll(s)", cond.Target, attempt)
			return Ready, nil
		}

		// Stop before a wait that would cross the deadline; never poll past
		// the configured timeout.
		if finite && !p.clock.Now().Add(cond.Interval).Before(deadline) {
			logging.Warn("Readiness", "%s did not become ready within %s", cond.Target, cond.Timeout)
			return TimedOut, nil
		}

		select {
		case <-ctx.Done():
			return Failed, fmt.Errorf("wait for %s interrupted: %w", cond.Target, ctx.Err())
		case <-p.clock.After(cond.Interval):
		}
	}
}

func isTerminalPhase(phase string) bool {
	switch phase {
	case "Failed", "Aborted", "Error":
		return true
	}
	return false
}
