package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icdctl/internal/config"
	"icdctl/internal/credentials"
	"icdctl/internal/helm"
	"icdctl/internal/ingest"
	"icdctl/internal/pipeline"
	"icdctl/internal/platform"
	"icdctl/internal/readiness"
	"icdctl/pkg/logging"

	"github.com/spf13/cobra"
)

func newUpCmd() *cobra.Command {
	var (
		configPath  string
		kubeContext string
		timeout     time.Duration
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run the full deployment pipeline against the target cluster",
		Long: `Runs every deployment stage in order and waits for each one to become
ready before starting the next:

  1. storage            MinIO object storage for documents and artifacts
  2. tracing-operators  distributed-tracing operator subscriptions
  3. gitops-login       session token derived from the GitOps bootstrap secret
  4. helm-deploy        the intelligent-cd application itself
  5. ingest-pipeline    hand-off to the external document-ingestion job

Required environment: MODEL_API_TOKEN, MODEL_URL, MODEL_NAME. These are
validated before anything touches the cluster.

Exit code 0 means the cluster converged; any stage failure halts the run
and exits non-zero, naming the failing stage. Already-applied stages are
left to the platform's own reconciliation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			logging.Init(level, os.Stderr)

			// Configuration is validated in full before any network call.
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if kubeContext != "" {
				cfg.Cluster.KubeContext = kubeContext
			}
			if timeout > 0 {
				cfg.Polling.StageTimeout = timeout
			}

			platformClient, err := platform.NewClient(cfg.Cluster.KubeContext)
			if err != nil {
				return err
			}

			// Cancellation between poll ticks; in-flight applies complete.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPipeline(ctx, cfg, platformClient)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default ./.icdctl/config.yaml)")
	cmd.Flags().StringVar(&kubeContext, "kube-context", "", "kubeconfig context to target (default: current context)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-stage readiness timeout (default: wait forever)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

// runPipeline wires the collaborators together and executes the stage list.
func runPipeline(ctx context.Context, cfg config.Config, platformClient platform.Client) error {
	resolver := credentials.NewResolver(platformClient)

	rc := pipeline.NewRunContext(cfg)

	// Resolved once, reused by every later stage that builds endpoint URLs.
	baseDomain, err := platformClient.BaseDomain(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve cluster base domain: %w", err)
	}
	rc.BaseDomain = baseDomain
	logging.Info("Up", "Cluster base domain: %s", baseDomain)

	stages := pipeline.DefaultStages(cfg, pipeline.Dependencies{
		Platform:      platformClient,
		Renderer:      helm.NewRenderer(),
		Authenticator: resolver,
		Routes:        resolver,
		Ingest:        ingest.NewRunner(cfg.Ingest.Command),
	})

	executor := pipeline.NewExecutor(readiness.NewProber(platformClient))
	orchestrator := pipeline.NewOrchestrator(executor)

	result, err := orchestrator.Execute(ctx, stages, rc)
	if err != nil {
		return err
	}

	fmt.Printf("Converged: %d/%d stages ready\n", len(result.Completed), len(stages))
	return nil
}
