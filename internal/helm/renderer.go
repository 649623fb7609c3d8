// Package helm invokes the chart renderer as an external collaborator.
// icdctl never evaluates templates in-process: `helm template` produces the
// manifest stream and this package only splits it into documents.
package helm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"

	"icdctl/pkg/logging"

	k8syaml "k8s.io/apimachinery/pkg/util/yaml"
)

// For mocking in tests
var execCommandContext = exec.CommandContext

// Renderer renders chart references into manifest documents via the helm
// binary's dry-render mode.
type Renderer struct {
	binary string
}

// NewRenderer returns a Renderer using the helm binary from PATH.
func NewRenderer() *Renderer {
	return &Renderer{binary: "helm"}
}

// Render runs `helm template` for the chart and returns the individual
// manifest documents. Values are passed with --set-string so the chart sees
// exactly the strings the pipeline resolved.
func (r *Renderer) Render(ctx context.Context, release, chartRef, namespace string, values map[string]string) ([][]byte, error) {
	args := buildTemplateArgs(release, chartRef, namespace, values)

	cmd := execCommandContext(ctx, r.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	logging.Debug("Helm", "Rendering chart %s (release %s)", chartRef, release)

	if runErr := cmd.Run(); runErr != nil {
		// Include helm's stderr in the error message for better diagnostics
		return nil, fmt.Errorf("failed to execute 'helm template %s': %w. Stderr: %s", chartRef, runErr, stderrBuf.String())
	}

	docs, err := splitDocuments(stdoutBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to split rendered output of %s: %w", chartRef, err)
	}
	logging.Debug("Helm", "Chart %s rendered %d document(s)", chartRef, len(docs))
	return docs, nil
}

// buildTemplateArgs assembles the helm command line. Value keys are sorted
// so repeated runs produce identical invocations.
func buildTemplateArgs(release, chartRef, namespace string, values map[string]string) []string {
	args := []string{"template", release, chartRef}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--set-string", fmt.Sprintf("%s=%s", k, values[k]))
	}
	return args
}

// splitDocuments breaks a multi-document YAML stream into its documents,
// dropping the empty ones helm emits between separators.
func splitDocuments(stream []byte) ([][]byte, error) {
	reader := k8syaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(stream)))
	var docs [][]byte
	for {
		doc, err := reader.Read()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}
		docs = append(docs, doc)
	}
}
