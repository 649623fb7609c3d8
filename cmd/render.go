package cmd

import (
	"fmt"
	"os"

	"icdctl/internal/config"
	"icdctl/internal/helm"
	"icdctl/internal/pipeline"
	"icdctl/pkg/logging"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render <stage>",
		Short: "Render a stage's manifests without applying them",
		Long: `Renders the chart behind a manifest stage (storage, tracing-operators,
or helm-deploy) and prints the documents to stdout. Nothing is submitted
to the cluster, and no credentials are derived: values that earlier
stages would resolve at run time render empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.LevelWarn, os.Stderr)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			stageName := args[0]
			release, chartRef, namespace, err := chartForStage(cfg, stageName)
			if err != nil {
				return err
			}

			var values map[string]string
			if stageName == pipeline.StageHelmDeploy {
				// Run-time values (session token, endpoints) are absent here.
				values = map[string]string{
					"model.url":  cfg.Model.URL,
					"model.name": cfg.Model.Name,
				}
			}

			docs, err := helm.NewRenderer().Render(cmd.Context(), release, chartRef, namespace, values)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				fmt.Println("---")
				os.Stdout.Write(doc)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default ./.icdctl/config.yaml)")

	return cmd
}

// chartForStage maps a manifest stage name to its chart coordinates.
func chartForStage(cfg config.Config, stage string) (release, chartRef, namespace string, err error) {
	switch stage {
	case pipeline.StageStorage:
		return "storage", cfg.Charts.Storage, cfg.Cluster.Namespace, nil
	case pipeline.StageTracing:
		return "tracing-operators", cfg.Charts.Tracing, cfg.Tracing.Namespace, nil
	case pipeline.StageHelmDeploy:
		return "intelligent-cd", cfg.Charts.App, cfg.Cluster.Namespace, nil
	default:
		return "", "", "", fmt.Errorf("stage %q has no chart to render (manifest stages: %s, %s, %s)",
			stage, pipeline.StageStorage, pipeline.StageTracing, pipeline.StageHelmDeploy)
	}
}
