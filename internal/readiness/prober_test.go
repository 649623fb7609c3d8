package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"icdctl/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clocktesting "k8s.io/utils/clock/testing"
)

// pollResult is one scripted answer from the fake reader.
type pollResult struct {
	value string
	found bool
	err   error
}

// scriptedReader answers polls from a fixed script; the last entry repeats
// once the script runs out.
type scriptedReader struct {
	mu     sync.Mutex
	script []pollResult
	polls  int
}

func (r *scriptedReader) ResourceField(ctx context.Context, ref platform.ResourceRef, path []string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.polls
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	r.polls++
	res := r.script[i]
	return res.value, res.found, res.err
}

func (r *scriptedReader) pollCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polls
}

var testTarget = platform.ResourceRef{
	Group: "apps", Version: "v1", Resource: "deployments", Namespace: "demo", Name: "minio",
}

type awaitResult struct {
	outcome Outcome
	err     error
}

// runAwait drives Await against a fake clock, stepping the clock whenever
// the prober blocks on it, until Await returns.
func runAwait(t *testing.T, prober *Prober, clk *clocktesting.FakeClock, cond Condition) awaitResult {
	t.Helper()

	done := make(chan awaitResult, 1)
	go func() {
		outcome, err := prober.Await(context.Background(), cond)
		done <- awaitResult{outcome: outcome, err: err}
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-done:
			return res
		case <-deadline:
			t.Fatal("Await did not terminate")
		default:
			if clk.HasWaiters() {
				clk.Step(cond.Interval)
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestAwait_ReadyOnFirstPoll(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{{value: "1", found: true}}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: FieldNonEmpty,
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	// An already-converged resource is still observed, exactly once.
	assert.Equal(t, 1, reader.pollCount())
}

func TestAwait_ReadyWhenPredicateFirstHolds(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{
		{value: "Progressing", found: true},
		{value: "Progressing", found: true},
		{value: "Healthy", found: true},
	}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "health", "status"},
		Predicate: FieldEquals,
		Expected:  "Healthy",
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	assert.Equal(t, 3, reader.pollCount())
}

func TestAwait_FiniteTimeoutStopsPolling(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{{value: "Installing", found: true}}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	interval := 10 * time.Second
	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "phase"},
		Predicate: FieldEquals,
		Expected:  "Succeeded",
		Interval:  interval,
		Timeout:   5 * interval,
	})

	require.NoError(t, res.err)
	assert.Equal(t, TimedOut, res.outcome)
	// A timeout of five intervals allows exactly five observations.
	assert.Equal(t, 5, reader.pollCount())
}

func TestAwait_ZeroTimeoutPollsWithoutBound(t *testing.T) {
	script := make([]pollResult, 0, 8)
	for i := 0; i < 7; i++ {
		script = append(script, pollResult{value: "", found: false})
	}
	script = append(script, pollResult{value: "2", found: true})
	reader := &scriptedReader{script: script}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: FieldNonEmpty,
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	assert.Equal(t, 8, reader.pollCount())
}

func TestAwait_TerminalPhaseFailsImmediately(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{
		{value: "Installing", found: true},
		{value: "Failed", found: true},
	}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "phase"},
		Predicate: PhaseSucceeded,
		Interval:  10 * time.Second,
	})

	assert.Equal(t, Failed, res.outcome)
	var failed *ConditionFailedError
	require.True(t, errors.As(res.err, &failed))
	assert.Equal(t, "Failed", failed.Observed)
	assert.Equal(t, 2, reader.pollCount())
}

func TestAwait_MissingResourceIsNotReadyYet(t *testing.T) {
	notFound := apierrors.NewNotFound(schema.GroupResource{Resource: "deployments"}, "minio")
	reader := &scriptedReader{script: []pollResult{
		{err: notFound},
		{err: notFound},
		{value: "1", found: true},
	}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: FieldNonEmpty,
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	assert.Equal(t, 3, reader.pollCount())
}

func TestAwait_QueryErrorKeepsPolling(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{
		{err: errors.New("connection refused")},
		{value: "1", found: true},
	}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: FieldNonEmpty,
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	assert.Equal(t, 2, reader.pollCount())
}

func TestAwait_EmptyFieldIsNotReady(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{
		{value: "", found: true},
		{value: "1", found: true},
	}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	res := runAwait(t, prober, clk, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: FieldNonEmpty,
		Interval:  10 * time.Second,
	})

	require.NoError(t, res.err)
	assert.Equal(t, Ready, res.outcome)
	assert.Equal(t, 2, reader.pollCount())
}

func TestAwait_CancellationBetweenPolls(t *testing.T) {
	reader := &scriptedReader{script: []pollResult{{value: "Installing", found: true}}}
	clk := clocktesting.NewFakeClock(time.Now())
	prober := NewProberWithClock(reader, clk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := prober.Await(ctx, Condition{
		Target:    testTarget,
		FieldPath: []string{"status", "phase"},
		Predicate: FieldEquals,
		Expected:  "Succeeded",
		Interval:  10 * time.Second,
	})

	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, context.Canceled)
	// The first poll still ran; cancellation takes effect at the tick.
	assert.Equal(t, 1, reader.pollCount())
}
