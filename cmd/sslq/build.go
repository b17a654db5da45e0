package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/dataset"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/config"
)

type buildFlags struct {
	input       string
	out         string
	images      string
	captions    string
	fileCol     string
	triageCol   string
	minStyle    float64
	minQuality  float64
	requireTerm bool
	filters     []string
	workers     int
	dryRun      bool
}

func newBuildCmd() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:          "build",
		Short:        "Generate caption files and copy the passing images",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if flags.captions != "" {
				loaded, err := config.Load(flags.captions)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			gen, err := cfg.Build()
			if err != nil {
				return err
			}

			filters, err := parseFilters(flags.filters)
			if err != nil {
				return err
			}

			rep, err := dataset.Run(cmd.Context(), dataset.Options{
				MetadataPath: flags.input,
				ImagesDir:    flags.images,
				OutDir:       flags.out,
				FileColumn:   flags.fileCol,
				TriageColumn: flags.triageCol,
				MinStyle:     flags.minStyle,
				MinQuality:   flags.minQuality,
				RequireTerm:  flags.requireTerm,
				Terms:        cfg.StrongTerms,
				Filters:      filters,
				Workers:      flags.workers,
				DryRun:       flags.dryRun,
				Generator:    gen,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.dryRun {
				fmt.Fprintf(out, "dry run %s: %d of %d rows pass (%d missing images)\n",
					rep.RunID, rep.Counts.PassedFilters, rep.Counts.TotalRows, rep.Counts.MissingImages)
				return nil
			}
			fmt.Fprintf(out, "run %s: %d captions, %d images copied -> %s\n",
				rep.RunID, rep.Counts.AnnotationsWritten, rep.Counts.ImagesCopied, rep.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.input, "input", "", "metadata table (csv, tsv, xlsx, or sqlite)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output directory for caption/image pairs")
	cmd.Flags().StringVar(&flags.images, "images", "", "directory the file_name paths resolve against")
	cmd.Flags().StringVar(&flags.captions, "captions", "", "caption config YAML (defaults apply when omitted)")
	cmd.Flags().StringVar(&flags.fileCol, "file-col", "file_name", "column holding the image path")
	cmd.Flags().StringVar(&flags.triageCol, "triage-col", "triage", "column holding the triage verdict")
	cmd.Flags().Float64Var(&flags.minStyle, "min-style", 3, "minimum style_match score")
	cmd.Flags().Float64Var(&flags.minQuality, "min-quality", 3, "minimum quality score")
	cmd.Flags().BoolVar(&flags.requireTerm, "require-term", false, "keep only rows mentioning a configured strong term")
	cmd.Flags().StringArrayVar(&flags.filters, "filter", nil, "extra column filter as col=v1,v2 (repeatable)")
	cmd.Flags().IntVar(&flags.workers, "workers", 1, "concurrent row workers")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report what would happen without writing")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}

// parseFilters turns repeated col=v1,v2 flags into the builder's filter map.
func parseFilters(specs []string) (map[string][]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	filters := make(map[string][]string)
	for _, spec := range specs {
		col, list, ok := strings.Cut(spec, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("bad filter %q, want col=v1,v2", spec)
		}
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				filters[col] = append(filters[col], v)
			}
		}
	}
	return filters, nil
}
