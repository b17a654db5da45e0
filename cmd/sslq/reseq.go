package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
)

func newReseqCmd() *cobra.Command {
	var metaPath, out string

	cmd := &cobra.Command{
		Use:          "reseq",
		Short:        "Rewrite the id column as a clean 1..N sequence",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header, rows, err := metadata.ReadRows(metaPath)
			if err != nil {
				return err
			}
			header = metadata.Resequence(header, rows)

			dest := out
			if dest == "" {
				dest = metaPath
			}
			if err := metadata.WriteRows(dest, header, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "resequenced %d rows -> %s\n", len(rows), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&metaPath, "metadata", "", "metadata table to resequence")
	cmd.Flags().StringVar(&out, "out", "", "output path (default: overwrite the input)")

	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}
