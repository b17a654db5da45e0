package pipeline

import (
	"regexp"
	"strings"
)

var (
	commaDot    = regexp.MustCompile(`,\s+\.`)
	strandedDot = regexp.MustCompile(`\s+\.\s+`)
	spaceDot    = regexp.MustCompile(`\s+\.`)
	dotRun      = regexp.MustCompile(`\.\.+`)
)

// Finalize cleans residual whitespace and punctuation debris: ", ." becomes
// ".", stranded interior dots vanish, dot runs collapse, whitespace runs
// become single spaces. The pass sequence repeats until the text stops
// changing, so the result is a fixed point.
func Finalize(text string) string {
	for {
		out := commaDot.ReplaceAllString(text, ".")
		out = strandedDot.ReplaceAllString(out, " ")
		out = spaceDot.ReplaceAllString(out, ".")
		out = dotRun.ReplaceAllString(out, ".")
		out = strings.TrimSpace(spaceRun.ReplaceAllString(out, " "))
		if out == text {
			return out
		}
		text = out
	}
}
