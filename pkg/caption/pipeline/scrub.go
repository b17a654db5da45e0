package pipeline

import (
	"strings"
	"unicode"
)

// QualityScrubber drops whole sentences that mention quality artifacts such
// as blur or watermark vocabulary.
type QualityScrubber struct {
	issue []string
}

// NewQualityScrubber creates a scrubber over the given issue terms, matched
// as case-insensitive substrings.
func NewQualityScrubber(issueTerms []string) *QualityScrubber {
	return &QualityScrubber{issue: lowerNonEmpty(issueTerms)}
}

// Scrub removes every sentence containing an issue term and rejoins the
// survivors with single spaces. The flag reports whether any sentence was
// dropped.
func (q *QualityScrubber) Scrub(text string) (string, bool) {
	if text == "" || len(q.issue) == 0 {
		return text, false
	}
	removed := false
	var kept []string
	for _, sent := range splitSentences(text) {
		if containsAny(strings.ToLower(sent), q.issue) {
			removed = true
			continue
		}
		sent = strings.TrimSpace(sent)
		if sent != "" {
			kept = append(kept, sent)
		}
	}
	return strings.Join(kept, " "), removed
}

// splitSentences splits after ".", "!", or "?" followed by whitespace,
// keeping the punctuation with its sentence. Text without a final
// terminator is one trailing sentence.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}
