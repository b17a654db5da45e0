// Package caption turns tabular per-image metadata into training captions.
// The heavy lifting lives in the pipeline and terms subpackages; this
// package binds them to rows and exposes the one-call Generator.
package caption

import (
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/pipeline"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// Row is one image's metadata record, column name to raw value.
type Row map[string]string

// Get returns the trimmed value of a column. Absent values and the
// sentinels "nan"/"none" read as empty strings so no consumer ever sees
// them.
func (r Row) Get(col string) string {
	v := strings.TrimSpace(r[col])
	switch strings.ToLower(v) {
	case "", "nan", "none":
		return ""
	}
	return v
}

// Result is the outcome of generating one caption.
type Result struct {
	Caption         string
	QualityScrubbed bool
	Empty           bool
}

// Options configures a Generator. All behavior knobs are explicit here;
// nothing reads globals.
type Options struct {
	DescriptionFields []string
	TermFields        []string
	Index             *terms.Index
	IssueTerms        []string
	JunkPhrases       []string
	Trigger           string
	Concept           string
	WeightPolicy      pipeline.Policy
	WeightTagFormat   string
	FilterExtracted   bool
}

// Generator computes captions from rows. It is immutable after New and safe
// for concurrent use across rows.
type Generator struct {
	descFields []string
	termFields []string
	pipe       *pipeline.Pipeline
}

// New assembles the caption pipeline from the given options.
func New(opts Options) *Generator {
	index := opts.Index
	if index == nil {
		index = terms.NewIndex(nil, terms.CollisionMaxWeight)
	}
	pipe := pipeline.NewPipeline(
		pipeline.NewTermExtractor(opts.IssueTerms, opts.FilterExtracted),
		pipeline.NewWeighter(index, opts.WeightPolicy, opts.WeightTagFormat),
		pipeline.NewQualityScrubber(opts.IssueTerms),
		pipeline.NewJunkStripper(opts.JunkPhrases),
		pipeline.NewInjector(opts.Trigger, opts.Concept),
	)
	return &Generator{
		descFields: opts.DescriptionFields,
		termFields: opts.TermFields,
		pipe:       pipe,
	}
}

// Generate computes the caption for one row. It never fails: malformed
// values sanitize away, and a row that empties out comes back with Empty
// set so the caller can count it.
func (g *Generator) Generate(row Row) Result {
	descs := make([]string, len(g.descFields))
	for i, f := range g.descFields {
		descs[i] = row.Get(f)
	}
	vals := make([]string, len(g.termFields))
	for i, f := range g.termFields {
		vals[i] = row.Get(f)
	}
	out := g.pipe.Run(descs, vals)
	return Result{Caption: out.Text, QualityScrubbed: out.QualityScrubbed, Empty: out.Empty}
}
