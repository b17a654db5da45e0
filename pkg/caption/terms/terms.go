package terms

import (
	"regexp"
	"sort"
	"strings"
)

// Term is one configured strong term: a canonical phrase, its emphasis
// weight, and the alternate surface forms that resolve to it.
type Term struct {
	Term     string   `yaml:"term"`
	Weight   float64  `yaml:"weight"`
	Synonyms []string `yaml:"synonyms"`
}

// CollisionPolicy decides which entry survives when two configured terms
// normalize to the same key.
type CollisionPolicy string

const (
	CollisionFirstSeen CollisionPolicy = "first-seen"
	CollisionMaxWeight CollisionPolicy = "max-weight"
)

// Entry is the resolved value for one normalized key: the representative
// token substituted or annotated for a match, and the term's weight.
type Entry struct {
	Token  string
	Weight float64
}

// Index is the compiled strong-term lookup. It is built once and read-only
// afterwards, so concurrent readers need no locking.
type Index struct {
	entries map[string]Entry
	keys    []string
	pattern *regexp.Regexp
}

// NormalizeKey lowercases a phrase, turns underscores into spaces, and trims
// the result. Canonical terms, synonyms, and matched spans all go through
// this before any lookup.
func NormalizeKey(s string) string {
	return strings.TrimSpace(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

// SnakeToken returns the normalized phrase with spaces as underscores, the
// single-token form used in training captions.
func SnakeToken(s string) string {
	return strings.ReplaceAll(NormalizeKey(s), " ", "_")
}

// NewIndex compiles a term list into a lookup table and matching pattern.
// Every canonical term and every synonym is keyed by its normalized form;
// all forms of one term share the canonical's snake token. Keys claimed by
// an earlier term are kept under first-seen, or replaced by a strictly
// heavier term under max-weight.
func NewIndex(list []Term, policy CollisionPolicy) *Index {
	idx := &Index{entries: make(map[string]Entry)}
	for _, t := range list {
		token := SnakeToken(t.Term)
		if token == "" {
			continue
		}
		for _, form := range append([]string{t.Term}, t.Synonyms...) {
			key := NormalizeKey(form)
			if key == "" {
				continue
			}
			prev, ok := idx.entries[key]
			if ok {
				if policy == CollisionFirstSeen {
					continue
				}
				if t.Weight <= prev.Weight {
					continue
				}
			} else {
				idx.keys = append(idx.keys, key)
			}
			idx.entries[key] = Entry{Token: token, Weight: t.Weight}
		}
	}
	idx.pattern = buildPattern(idx.keys)
	return idx
}

// buildPattern compiles the case-insensitive, word-boundary alternation of
// all keys. Longer keys come first so the scan prefers "golden" over "gold"
// at the same start position.
func buildPattern(keys []string) *regexp.Regexp {
	if len(keys) == 0 {
		return nil
	}
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})
	quoted := make([]string, len(ordered))
	for i, k := range ordered {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Pattern returns the compiled matcher, or nil when no terms are configured.
func (ix *Index) Pattern() *regexp.Regexp {
	return ix.pattern
}

// Lookup resolves a matched span to its entry.
func (ix *Index) Lookup(span string) (Entry, bool) {
	e, ok := ix.entries[NormalizeKey(span)]
	return e, ok
}

// Len reports the number of distinct normalized keys.
func (ix *Index) Len() int {
	return len(ix.entries)
}
