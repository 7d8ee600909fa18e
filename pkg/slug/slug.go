// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	// The ㄱ-힝 range (U+3131 to U+D79D) spans Hangul jamo and syllables and
	// also the CJK ideographs in between, so kanji and hanzi are kept.
	disallowedRegex = regexp.MustCompile(`[^ㄱ-힝a-z0-9\s\p{Z}\x{FEFF}-]`)
	// RE2 \s is ASCII only; \p{Z} adds NBSP, ideographic and other Unicode spaces.
	whitespaceRegex  = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	hyphenRunRegex   = regexp.MustCompile(`-{2,}`)
	edgeHyphensRegex = regexp.MustCompile(`^-+|-+$`)
)

// Generate normalizes a title into a slug. The result only contains
// lowercase letters, digits, Hangul, CJK ideographs and single hyphens, never starts or ends
// with a hyphen, and Generate(Generate(s)) == Generate(s).
func Generate(title string) string {
	s := strings.ToLower(title)
	s = disallowedRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, "-")
	s = hyphenRunRegex.ReplaceAllString(s, "-")
	return edgeHyphensRegex.ReplaceAllString(s, "")
}
