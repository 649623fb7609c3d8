package ingest

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"icdctl/internal/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCommand substitutes the ingestion command with a shell script while
// keeping the environment the Runner sets.
func stubCommand(t *testing.T, shellScript string) {
	t.Helper()
	original := execCommandContext
	t.Cleanup(func() { execCommandContext = original })
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", shellScript)
	}
}

func TestRun_Success(t *testing.T) {
	stubCommand(t, "exit 0")
	runner := NewRunner([]string{"python3", "pipelines/ingest-pipeline.py"})

	err := runner.Run(context.Background(), "https://llamastack.apps.example.com", credentials.NewToken("sk-test"))
	assert.NoError(t, err)
}

func TestRun_ExitCodeIsAuthoritative(t *testing.T) {
	stubCommand(t, "exit 3")
	runner := NewRunner([]string{"python3", "pipelines/ingest-pipeline.py"})

	err := runner.Run(context.Background(), "https://llamastack.apps.example.com", credentials.NewToken("sk-test"))
	require.Error(t, err)

	var jobErr *ExternalJobFailedError
	require.True(t, errors.As(err, &jobErr))
	assert.Equal(t, 3, jobErr.ExitCode)
}

func TestRun_PassesEndpointAndTokenThroughEnvironment(t *testing.T) {
	stubCommand(t, `test "$INGEST_ENDPOINT_URL" = "https://llamastack.apps.example.com" && test "$INGEST_BEARER_TOKEN" = "sk-test"`)
	runner := NewRunner([]string{"python3", "pipelines/ingest-pipeline.py"})

	err := runner.Run(context.Background(), "https://llamastack.apps.example.com", credentials.NewToken("sk-test"))
	assert.NoError(t, err)
}

func TestRun_NoCommandConfigured(t *testing.T) {
	err := NewRunner(nil).Run(context.Background(), "https://x", credentials.Token{})
	assert.Error(t, err)
}
