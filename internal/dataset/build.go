package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
)

type builder struct {
	opts   Options
	counts counters

	mu       sync.Mutex
	examples []Example
}

// Run reads the metadata table and processes every row through the gates,
// the caption generator, and the output writers. Row failures are counted
// and logged, never fatal; the only fatal errors are reading the table and
// creating the output directory. Cancelling ctx stops new rows from being
// picked up.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Generator == nil {
		return nil, errors.New("dataset: nil caption generator")
	}
	if opts.FileColumn == "" {
		opts.FileColumn = defaultFileCol
	}
	if opts.TriageColumn == "" {
		opts.TriageColumn = defaultTriage
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	_, rows, err := metadata.ReadRows(opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, err
		}
	}

	b := &builder{opts: opts}

	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(row caption.Row) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			b.processRow(row)
		}(row)
	}
	wg.Wait()

	report := &Report{
		RunID:        newRunID(),
		Counts:       b.counts.snapshot(),
		OutputDir:    absDir(opts.OutDir),
		Examples:     b.examples,
		MinStyle:     opts.MinStyle,
		MinQuality:   opts.MinQuality,
		FileColumn:   opts.FileColumn,
		TriageColumn: opts.TriageColumn,
		DryRun:       opts.DryRun,
	}

	logging.Info().
		Str("run_id", report.RunID).
		Int64("total_rows", report.Counts.TotalRows).
		Int64("passed_filters", report.Counts.PassedFilters).
		Int64("annotations_written", report.Counts.AnnotationsWritten).
		Int64("images_copied", report.Counts.ImagesCopied).
		Int64("missing_images", report.Counts.MissingImages).
		Bool("dry_run", opts.DryRun).
		Msg("dataset build finished")

	if !opts.DryRun {
		if err := writeReport(opts.OutDir, report); err != nil {
			logging.Warn().Err(err).Msg("could not write report.json")
		}
	}
	return report, nil
}

func (b *builder) processRow(row caption.Row) {
	b.counts.totalRows.Add(1)

	if strings.EqualFold(strings.TrimSpace(row[b.opts.TriageColumn]), "skip") {
		b.counts.skippedTriage.Add(1)
		return
	}
	if b.opts.RequireTerm && !rowMentionsTerm(row, b.opts.Terms) {
		return
	}
	if !passesThresholds(row, b.opts.MinStyle, b.opts.MinQuality) {
		return
	}
	if !passesFilters(row, b.opts.Filters) {
		return
	}
	b.counts.passedFilters.Add(1)

	rel := strings.TrimSpace(row[b.opts.FileColumn])
	if rel == "" {
		return
	}
	rel = filepath.Clean(filepath.FromSlash(rel))

	src := filepath.Join(b.opts.ImagesDir, rel)
	if _, err := os.Stat(src); err != nil {
		logging.Warn().Str("image", src).Msg("missing image")
		b.counts.missingImages.Add(1)
		return
	}

	result := b.opts.Generator.Generate(row)
	if result.QualityScrubbed {
		b.counts.qualityScrubbed.Add(1)
	}
	if result.Empty || result.Caption == "" {
		logging.Warn().Str("image", rel).Msg("empty description")
		b.counts.emptyDescriptions.Add(1)
		return
	}

	base := filepath.Join(b.opts.OutDir, rel)
	txtOut := strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
	imgOut := strings.TrimSuffix(txtOut, ".txt") + filepath.Ext(src)

	if !b.opts.DryRun {
		if err := os.MkdirAll(filepath.Dir(txtOut), 0o755); err != nil {
			logging.Error().Err(err).Str("caption", txtOut).Msg("caption write failed")
			b.counts.writeErrors.Add(1)
			return
		}
		if err := os.WriteFile(txtOut, []byte(result.Caption), 0o644); err != nil {
			logging.Error().Err(err).Str("caption", txtOut).Msg("caption write failed")
			b.counts.writeErrors.Add(1)
			return
		}
		b.counts.annotationsWritten.Add(1)

		if err := copyFile(src, imgOut); err != nil {
			logging.Error().Err(err).Str("from", src).Str("to", imgOut).Msg("image copy failed")
			b.counts.copyErrors.Add(1)
		} else {
			b.counts.imagesCopied.Add(1)
		}
	}

	b.addExample(Example{
		SourceImg:          src,
		OutTxt:             txtOut,
		OutImg:             imgOut,
		DescriptionPreview: preview(result.Caption),
	})
}

func (b *builder) addExample(e Example) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.examples) < maxExamples {
		b.examples = append(b.examples, e)
	}
}

// copyFile copies src to dst keeping the permission bits and mtime.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func writeReport(outDir string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "report.json"), data, 0o644)
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
