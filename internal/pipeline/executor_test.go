package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"icdctl/internal/config"
	"icdctl/internal/platform"
	"icdctl/internal/readiness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Model.URL = "https://model.example.com/v1"
	cfg.Model.Name = "granite-3"
	cfg.Model.Token = "sk-test"
	return cfg
}

// countingAction records how often it was applied and optionally fails.
type countingAction struct {
	applies int
	err     error
}

func (a *countingAction) Apply(ctx context.Context, rc *RunContext) error {
	a.applies++
	return a.err
}

// staticReader answers every readiness poll identically.
type staticReader struct {
	value string
	found bool
	err   error
	polls int
}

func (r *staticReader) ResourceField(ctx context.Context, ref platform.ResourceRef, path []string) (string, bool, error) {
	r.polls++
	return r.value, r.found, r.err
}

func readyCondition(interval, timeout time.Duration) *readiness.Condition {
	return &readiness.Condition{
		Target: platform.ResourceRef{
			Group: "apps", Version: "v1", Resource: "deployments", Namespace: "demo", Name: "minio",
		},
		FieldPath: []string{"status", "readyReplicas"},
		Predicate: readiness.FieldNonEmpty,
		Interval:  interval,
		Timeout:   timeout,
	}
}

func TestRun_AppliesAndWaits(t *testing.T) {
	action := &countingAction{}
	reader := &staticReader{value: "1", found: true}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))

	result, err := executor.Run(context.Background(), Stage{
		Name:      "storage",
		Action:    action,
		Readiness: readyCondition(time.Second, 0),
		Blocking:  true,
	}, NewRunContext(testConfig()))

	require.NoError(t, err)
	assert.Equal(t, StageResult{Applied: true, Ready: true}, result)
	assert.Equal(t, 1, action.applies)
	assert.Equal(t, 1, reader.polls)
}

func TestRun_NoReadinessGate(t *testing.T) {
	action := &countingAction{}
	executor := NewExecutor(readiness.NewProberWithClock(&staticReader{}, clocktesting.NewFakeClock(time.Now())))

	result, err := executor.Run(context.Background(), Stage{Name: "gitops-login", Action: action, Blocking: true}, NewRunContext(testConfig()))

	require.NoError(t, err)
	assert.Equal(t, StageResult{Applied: true, Ready: true}, result)
}

func TestRun_ApplyFailureIsFatal(t *testing.T) {
	action := &countingAction{err: errors.New("server rejected manifest")}
	reader := &staticReader{value: "1", found: true}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))

	_, err := executor.Run(context.Background(), Stage{
		Name:      "storage",
		Action:    action,
		Readiness: readyCondition(time.Second, 0),
		Blocking:  true,
	}, NewRunContext(testConfig()))
	require.Error(t, err)

	var applyErr *ApplyFailedError
	require.True(t, errors.As(err, &applyErr))
	assert.Equal(t, "storage", applyErr.Stage)
	// Readiness is never consulted after a failed apply.
	assert.Equal(t, 0, reader.polls)
}

func TestRun_BlockingTimeoutIsFatal(t *testing.T) {
	action := &countingAction{}
	reader := &staticReader{value: "", found: false}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))

	// Timeout equal to one interval permits a single poll and no wait.
	_, err := executor.Run(context.Background(), Stage{
		Name:      "storage",
		Action:    action,
		Readiness: readyCondition(time.Second, time.Second),
		Blocking:  true,
	}, NewRunContext(testConfig()))
	require.Error(t, err)

	var timedOut *ReadinessTimedOutError
	require.True(t, errors.As(err, &timedOut))
	assert.Equal(t, "storage", timedOut.Stage)
	assert.Equal(t, 1, reader.polls)
}

func TestRun_NonBlockingTimeoutProceeds(t *testing.T) {
	action := &countingAction{}
	reader := &staticReader{value: "", found: false}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))

	result, err := executor.Run(context.Background(), Stage{
		Name:      "storage",
		Action:    action,
		Readiness: readyCondition(time.Second, time.Second),
		Blocking:  false,
	}, NewRunContext(testConfig()))

	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.False(t, result.Ready)
}

func TestRun_TerminalConditionFailurePropagates(t *testing.T) {
	action := &countingAction{}
	reader := &staticReader{value: "Failed", found: true}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))

	cond := readyCondition(time.Second, 0)
	cond.FieldPath = []string{"status", "phase"}
	cond.Predicate = readiness.PhaseSucceeded

	_, err := executor.Run(context.Background(), Stage{
		Name:      "tracing-operators",
		Action:    action,
		Readiness: cond,
		Blocking:  true,
	}, NewRunContext(testConfig()))
	require.Error(t, err)

	var failed *readiness.ConditionFailedError
	assert.True(t, errors.As(err, &failed))
}

func TestRun_SecondRunConverges(t *testing.T) {
	action := &countingAction{}
	reader := &staticReader{value: "1", found: true}
	executor := NewExecutor(readiness.NewProberWithClock(reader, clocktesting.NewFakeClock(time.Now())))
	stage := Stage{Name: "storage", Action: action, Readiness: readyCondition(time.Second, 0), Blocking: true}

	first, err := executor.Run(context.Background(), stage, NewRunContext(testConfig()))
	require.NoError(t, err)
	second, err := executor.Run(context.Background(), stage, NewRunContext(testConfig()))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, action.applies)
}
