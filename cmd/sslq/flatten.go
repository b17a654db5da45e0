package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/lstudio"
)

func newFlattenCmd() *cobra.Command {
	opts := lstudio.FlattenOptions{}

	cmd := &cobra.Command{
		Use:          "flatten ROOT",
		Short:        "Turn an image folder tree into Label Studio import files",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lstudio.Flatten(args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.DryRun {
				fmt.Fprintf(out, "dry run: %d tasks across %d labels\n", len(res.Tasks), len(res.ByLabel))
				return nil
			}
			fmt.Fprintf(out, "%d tasks across %d labels\n", len(res.Tasks), len(res.ByLabel))
			fmt.Fprintln(out, "  "+res.JSONPath)
			fmt.Fprintln(out, "  "+res.CSVPath)
			fmt.Fprintln(out, "  "+res.LabelsPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Exts, "exts", nil, "image extensions to include (default: common image types)")
	cmd.Flags().IntVar(&opts.LabelDepth, "label-depth", 1, "directory levels joined into the label")
	cmd.Flags().StringVar(&opts.RootLabel, "root-label", "", "label for images directly under ROOT (default __root__)")
	cmd.Flags().BoolVar(&opts.AbsolutePaths, "absolute-paths", false, "emit file:// URIs instead of local-files URLs")
	cmd.Flags().StringVar(&opts.OutputPrefix, "output-prefix", "", "basename for the output files (default: ROOT name)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "scan and report without writing")
	return cmd
}
