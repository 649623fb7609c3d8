// Package ingest hands off to the external document-ingestion pipeline.
// The whole contract is: run the configured command with an endpoint URL and
// a bearer token, and believe its exit code. Its internals are opaque.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"icdctl/internal/credentials"
	"icdctl/pkg/logging"
)

// For mocking in tests
var execCommandContext = exec.CommandContext

// ExternalJobFailedError reports a non-zero exit from the ingestion command.
type ExternalJobFailedError struct {
	ExitCode int
}

func (e *ExternalJobFailedError) Error() string {
	return fmt.Sprintf("ingestion job exited with code %d", e.ExitCode)
}

// Runner invokes the ingestion command.
type Runner struct {
	command []string
}

// NewRunner returns a Runner for the given command and arguments.
func NewRunner(command []string) *Runner {
	return &Runner{command: command}
}

// logWriter relays subprocess output lines to the logger so the job's
// progress is visible without interpreting it.
type logWriter struct {
	subsystem string
	asError   bool
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		if w.asError {
			logging.Warn(w.subsystem, "%s", line)
		} else {
			logging.Info(w.subsystem, "%s", line)
		}
	}
	return len(p), nil
}

// Run executes the ingestion command, passing the service endpoint and the
// bearer token through its environment. The exit code is authoritative: any
// non-zero exit fails with ExternalJobFailedError.
func (r *Runner) Run(ctx context.Context, endpointURL string, token credentials.Token) error {
	if len(r.command) == 0 {
		return fmt.Errorf("no ingestion command configured")
	}

	cmd := execCommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Env = append(os.Environ(),
		"INGEST_ENDPOINT_URL="+endpointURL,
		"INGEST_BEARER_TOKEN="+token.Reveal(),
	)
	cmd.Stdout = &logWriter{subsystem: "Ingest"}
	cmd.Stderr = &logWriter{subsystem: "Ingest", asError: true}

	logging.Info("Ingest", "Running ingestion job: %s (endpoint %s, token %s)", strings.Join(r.command, " "), endpointURL, token)

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExternalJobFailedError{ExitCode: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("failed to execute ingestion command: %w", err)
	}
	logging.Info("Ingest", "Ingestion job completed successfully")
	return nil
}
