package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/lstudio"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
)

func newConvertCmd() *cobra.Command {
	var export, imagesRoot, out string

	cmd := &cobra.Command{
		Use:          "convert",
		Short:        "Convert a Label Studio export into a metadata table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header, rows, err := lstudio.Convert(export, imagesRoot)
			if err != nil {
				return err
			}
			if err := metadata.WriteRows(out, header, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d tasks -> %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Label Studio export JSON")
	cmd.Flags().StringVar(&imagesRoot, "images-root", "", "directory searched to resolve image filenames")
	cmd.Flags().StringVar(&out, "out", "", "metadata output path (csv, tsv, xlsx, or sqlite)")

	_ = cmd.MarkFlagRequired("export")
	_ = cmd.MarkFlagRequired("images-root")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
