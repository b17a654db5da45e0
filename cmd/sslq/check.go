package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
)

func newCheckCmd() *cobra.Command {
	var metaPath, imagesDir string

	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Audit a metadata table against the images on disk",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := metadata.Check(metaPath, imagesDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scanned %d rows\n", rep.RowsScanned)
			fmt.Fprintf(out, "  missing or bad paths: %d\n", len(rep.BadPaths))
			fmt.Fprintf(out, "  overlong paths:       %d\n", len(rep.LongPaths))
			fmt.Fprintf(out, "  suspicious names:     %d\n", len(rep.BadChars))
			fmt.Fprintf(out, "  numeric issues:       %d\n", len(rep.BadNumbers))

			printIssues(out, "bad paths", rep.BadPaths, 5)
			printIssues(out, "overlong paths", rep.LongPaths, 3)
			printIssues(out, "suspicious names", rep.BadChars, 3)
			printIssues(out, "numeric issues", rep.BadNumbers, 3)

			if !rep.OK() {
				return fmt.Errorf("%d rows have missing or bad paths", len(rep.BadPaths))
			}
			fmt.Fprintln(out, "metadata OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&metaPath, "metadata", "", "metadata table to audit")
	cmd.Flags().StringVar(&imagesDir, "images", "", "directory holding the image files")

	_ = cmd.MarkFlagRequired("metadata")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}

func printIssues(w io.Writer, title string, issues []metadata.Issue, max int) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for i, issue := range issues {
		if i == max {
			fmt.Fprintf(w, "  ... and %d more\n", len(issues)-i)
			return
		}
		fmt.Fprintf(w, "  line %d - %s\n", issue.Line, issue.Detail)
	}
}
