package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Sanitize normalizes one raw field value into a clean sentence fragment:
// trim, drop sentinel values, strip surrounding quotes, collapse whitespace,
// uppercase the first character, and close with a "." unless the text
// already ends in sentence punctuation. Empty input stays empty, and the
// output is a fixed point: sanitizing it again changes nothing.
func Sanitize(text string) string {
	s := strings.TrimSpace(text)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return ""
	}

	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return ""
	}
	s = spaceRun.ReplaceAllString(s, " ")

	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]

	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
