// Package dataset turns a metadata table plus an image folder into a
// training-ready dataset: one caption .txt per image, images mirrored under
// the output directory, and a machine-readable report of what happened.
package dataset

import (
	"crypto/rand"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// Options configures a build run.
type Options struct {
	MetadataPath string
	ImagesDir    string
	OutDir       string

	// FileColumn holds the image path relative to ImagesDir; TriageColumn
	// marks rows a human already rejected. Empty values take the defaults.
	FileColumn   string
	TriageColumn string

	// Rows must clear both thresholds to be included. A value that does
	// not parse as a number fails its threshold.
	MinStyle   float64
	MinQuality float64

	// RequireTerm drops rows whose text fields mention none of Terms.
	RequireTerm bool
	Terms       []terms.Term

	// Filters maps a column to allowed substrings; a row passes when each
	// filtered column contains at least one of them (case-insensitive).
	Filters map[string][]string

	Workers int
	DryRun  bool

	Generator *caption.Generator
}

// Counts tallies what happened to every row of the run.
type Counts struct {
	TotalRows          int64 `json:"total_rows"`
	SkippedTriage      int64 `json:"skipped_triage"`
	PassedFilters      int64 `json:"passed_filters"`
	AnnotationsWritten int64 `json:"annotations_written"`
	ImagesCopied       int64 `json:"images_copied"`
	MissingImages      int64 `json:"missing_images"`
	CopyErrors         int64 `json:"copy_errors"`
	WriteErrors        int64 `json:"write_errors"`
	EmptyDescriptions  int64 `json:"empty_descriptions"`
	QualityScrubbed    int64 `json:"quality_scrubbed"`
}

// counters is the concurrent form of Counts shared by the worker pool.
type counters struct {
	totalRows          atomic.Int64
	skippedTriage      atomic.Int64
	passedFilters      atomic.Int64
	annotationsWritten atomic.Int64
	imagesCopied       atomic.Int64
	missingImages      atomic.Int64
	copyErrors         atomic.Int64
	writeErrors        atomic.Int64
	emptyDescriptions  atomic.Int64
	qualityScrubbed    atomic.Int64
}

func (c *counters) snapshot() Counts {
	return Counts{
		TotalRows:          c.totalRows.Load(),
		SkippedTriage:      c.skippedTriage.Load(),
		PassedFilters:      c.passedFilters.Load(),
		AnnotationsWritten: c.annotationsWritten.Load(),
		ImagesCopied:       c.imagesCopied.Load(),
		MissingImages:      c.missingImages.Load(),
		CopyErrors:         c.copyErrors.Load(),
		WriteErrors:        c.writeErrors.Load(),
		EmptyDescriptions:  c.emptyDescriptions.Load(),
		QualityScrubbed:    c.qualityScrubbed.Load(),
	}
}

// Example is one sampled row for eyeballing the output.
type Example struct {
	SourceImg          string `json:"source_img"`
	OutTxt             string `json:"out_txt"`
	OutImg             string `json:"out_img"`
	DescriptionPreview string `json:"description_preview"`
}

// Report is the run summary written to report.json in the output directory.
type Report struct {
	RunID        string    `json:"run_id"`
	Counts       Counts    `json:"counts"`
	OutputDir    string    `json:"output_dir"`
	Examples     []Example `json:"examples"`
	MinStyle     float64   `json:"min_style"`
	MinQuality   float64   `json:"min_quality"`
	FileColumn   string    `json:"file_column"`
	TriageColumn string    `json:"triage_column"`
	DryRun       bool      `json:"dry_run"`
}

const (
	maxExamples    = 3
	maxPreviewLen  = 180
	defaultFileCol = "file_name"
	defaultTriage  = "triage"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > maxPreviewLen {
		r = r[:maxPreviewLen]
	}
	return string(r)
}
