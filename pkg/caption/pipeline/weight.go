package pipeline

import (
	"fmt"
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// Policy selects how matched strong terms are rewritten.
type Policy string

const (
	// PolicyReplace substitutes the representative token for every match,
	// discarding the span's original casing.
	PolicyReplace Policy = "replace"
	// PolicyAnnotate keeps matched spans verbatim and appends a weight tag
	// after the first occurrence of each representative token.
	PolicyAnnotate Policy = "annotate"
)

// DefaultTagFormat renders "(token:weight)" with one decimal, the emphasis
// form LoRA trainers read.
const DefaultTagFormat = "(%s:%.1f)"

// Weighter rewrites strong-term matches in combined caption text.
type Weighter struct {
	index     *terms.Index
	policy    Policy
	tagFormat string
}

// NewWeighter creates a weighter over a compiled index. An empty tagFormat
// falls back to DefaultTagFormat.
func NewWeighter(index *terms.Index, policy Policy, tagFormat string) *Weighter {
	if tagFormat == "" {
		tagFormat = DefaultTagFormat
	}
	return &Weighter{index: index, policy: policy, tagFormat: tagFormat}
}

// Apply scans the text once, left to right, rewriting non-overlapping
// matches in order of occurrence. The seen set guarantees at most one weight
// tag per representative token per text under the annotate policy.
func (w *Weighter) Apply(text string) string {
	if text == "" || w.index == nil || w.index.Pattern() == nil {
		return text
	}
	locs := w.index.Pattern().FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	seen := make(map[string]struct{})
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		span := text[loc[0]:loc[1]]
		last = loc[1]

		entry, ok := w.index.Lookup(span)
		if !ok {
			b.WriteString(span)
			continue
		}
		if w.policy == PolicyReplace {
			b.WriteString(entry.Token)
			continue
		}
		b.WriteString(span)
		if _, tagged := seen[entry.Token]; !tagged {
			seen[entry.Token] = struct{}{}
			b.WriteString(" ")
			b.WriteString(fmt.Sprintf(w.tagFormat, entry.Token, entry.Weight))
		}
	}
	b.WriteString(text[last:])
	return b.String()
}
