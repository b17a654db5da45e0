// Command sslq prepares image-caption training datasets: it converts
// annotation exports into a metadata table, audits and repairs the table,
// generates reverse prompts, and assembles the final caption/image pairs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose, logJSON bool

	root := &cobra.Command{
		Use:          "sslq",
		Short:        "Dataset preparation toolkit for caption training",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.Init(verbose, logJSON)
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON log lines instead of console output")

	root.AddCommand(
		newBuildCmd(),
		newConvertCmd(),
		newFlattenCmd(),
		newReversePromptsCmd(),
		newFixNamesCmd(),
		newCheckCmd(),
		newReseqCmd(),
	)
	return root
}
