package pipeline

import (
	"regexp"
	"strings"
)

var commaPair = regexp.MustCompile(`,\s*,`)

// JunkStripper removes configured boilerplate phrases at word boundaries.
type JunkStripper struct {
	patterns []*regexp.Regexp
}

// NewJunkStripper compiles one case-insensitive pattern per phrase. A match
// also consumes one trailing comma and the whitespace after it, so list
// entries disappear cleanly.
func NewJunkStripper(phrases []string) *JunkStripper {
	js := &JunkStripper{}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		js.patterns = append(js.patterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b(?:,\s*)?`))
	}
	return js
}

// Strip removes every phrase occurrence, then cleans up the whitespace and
// comma debris the removals leave behind.
func (j *JunkStripper) Strip(text string) string {
	if text == "" {
		return text
	}
	for _, p := range j.patterns {
		text = p.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	return commaPair.ReplaceAllString(text, ",")
}
