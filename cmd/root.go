package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "icdctl",
	Short: "Converge a cluster to the intelligent-cd deployment",
	Long: `icdctl provisions the intelligent-cd stack on an OpenShift cluster in
dependency order: storage, tracing operators, a GitOps session login,
the application deploy, and the document-ingestion pipeline.

Runs are idempotent: every stage re-submits desired state and re-checks
live readiness, so re-running against a converged cluster is safe.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. missing configuration, failed stages)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "icdctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
