package pipeline

import (
	"regexp"
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

var valueSplit = regexp.MustCompile(`[;,]\s*`)

// TermExtractor harvests short descriptive tokens from a row's tag-like
// fields, deduplicating across all of them.
type TermExtractor struct {
	issue  []string
	filter bool
}

// NewTermExtractor creates an extractor. When filter is on, tokens whose
// normalized form contains any issue term are dropped at harvest time.
func NewTermExtractor(issueTerms []string, filter bool) *TermExtractor {
	return &TermExtractor{issue: lowerNonEmpty(issueTerms), filter: filter}
}

// Extract splits each field value on commas and semicolons, keeps the first
// human-readable form seen for every normalized key, and joins the survivors
// with spaces. Field order and within-field order are preserved.
func (e *TermExtractor) Extract(values []string) string {
	var bucket []string
	seen := make(map[string]struct{})
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, val := range valueSplit.Split(v, -1) {
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			human := strings.ReplaceAll(val, "_", " ")
			key := terms.NormalizeKey(human)
			if e.filter && containsAny(key, e.issue) {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			bucket = append(bucket, human)
		}
	}
	return strings.TrimSpace(strings.Join(bucket, " "))
}

func lowerNonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
