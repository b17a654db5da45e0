package dataset

import (
	"strconv"
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// gatherFields are the columns scanned by the term-presence gate.
var gatherFields = []string{
	"file_name",
	"category",
	"tags",
	"human_description",
	"llm_description",
	"notes",
	"attributes",
	"mood",
	"palette",
}

// rowMentionsTerm reports whether any configured term or synonym appears as
// a case-insensitive substring of the row's gathered text fields.
func rowMentionsTerm(row caption.Row, list []terms.Term) bool {
	var sb strings.Builder
	for _, field := range gatherFields {
		sb.WriteString(row[field])
		sb.WriteString(" ")
	}
	text := strings.ToLower(sb.String())

	for _, t := range list {
		if t.Term != "" && strings.Contains(text, strings.ToLower(t.Term)) {
			return true
		}
		for _, syn := range t.Synonyms {
			if syn != "" && strings.Contains(text, strings.ToLower(syn)) {
				return true
			}
		}
	}
	return false
}

// passesThresholds applies the numeric gates. Missing or unparseable
// values fail.
func passesThresholds(row caption.Row, minStyle, minQuality float64) bool {
	style, err := strconv.ParseFloat(strings.TrimSpace(row["style_match"]), 64)
	if err != nil {
		return false
	}
	quality, err := strconv.ParseFloat(strings.TrimSpace(row["quality"]), 64)
	if err != nil {
		return false
	}
	return style >= minStyle && quality >= minQuality
}

// passesFilters applies the extra column filters: every filtered column
// must contain one of its allowed substrings.
func passesFilters(row caption.Row, filters map[string][]string) bool {
	for column, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		value := strings.ToLower(row[column])
		found := false
		for _, want := range allowed {
			if want != "" && strings.Contains(value, strings.ToLower(want)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
