package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	hangulOrLatinRegex = regexp.MustCompile(`[a-zA-Z\x{3131}-\x{D79D}]`)
	hanOrKanaRegex     = regexp.MustCompile(`[\x{4E00}-\x{9FFF}\x{3400}-\x{4DBF}\x{3040}-\x{30FF}]`)
)

// IsValidTrendKeyword accepts keywords that contain Hangul or Latin letters
// and no Han or Japanese kana
func IsValidTrendKeyword(keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	return hangulOrLatinRegex.MatchString(keyword) && !hanOrKanaRegex.MatchString(keyword)
}

// FilterTrendKeywords trims, de-duplicates and filters keywords, keeping the
// first limit survivors in input order. A non-positive limit keeps all.
func FilterTrendKeywords(keywords []string, limit int) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if seen[k] || !IsValidTrendKeyword(k) {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ValidateImportKeyword checks a keyword supplied by an operator. Unlike
// collected trends, imported keywords may be in any script.
func ValidateImportKeyword(keyword string, maxLength int) error {
	if keyword == "" {
		return fmt.Errorf("keyword is empty")
	}
	if !utf8.ValidString(keyword) {
		return fmt.Errorf("keyword is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(keyword); n > maxLength {
		return fmt.Errorf("keyword has %d characters, max is %d", n, maxLength)
	}
	for _, r := range keyword {
		if unicode.IsControl(r) {
			return fmt.Errorf("keyword contains control characters")
		}
	}
	return nil
}
