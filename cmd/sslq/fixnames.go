package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/renamer"
)

func newFixNamesCmd() *cobra.Command {
	opts := renamer.Options{}

	cmd := &cobra.Command{
		Use:          "fix-names",
		Short:        "Shorten unsafe image filenames and update the metadata table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := renamer.Run(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rows scanned, %d to rename, %d missing\n",
				rep.RowsScanned, len(rep.Renames), rep.Missing)
			for i, m := range rep.Renames {
				if i == 5 {
					fmt.Fprintf(out, "  ... and %d more\n", len(rep.Renames)-i)
					break
				}
				fmt.Fprintf(out, "  %s -> %s\n", m.OldName, m.NewName)
			}

			if opts.DryRun {
				fmt.Fprintln(out, "dry run: nothing renamed, pass --dry-run=false to apply")
				return nil
			}
			fmt.Fprintf(out, "renamed %d files, backup at %s\n", rep.Renamed, rep.BackupPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.MetadataPath, "metadata", "", "metadata table to rewrite")
	cmd.Flags().StringVar(&opts.ImagesDir, "images", "", "directory holding the image files")
	cmd.Flags().IntVar(&opts.MaxLen, "max-len", 64, "target basename length")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "preview without renaming or rewriting")

	_ = cmd.MarkFlagRequired("metadata")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}
