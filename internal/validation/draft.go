package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// First '{' through last '}' across lines; completions often wrap the object in prose.
	jsonObjectRegex    = regexp.MustCompile(`(?s)\{.*\}`)
	markdownImageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	imageURLRegex      = regexp.MustCompile(`(?i)https?://\S+\.(jpg|jpeg|png|gif|webp)`)
)

// DraftErrorReason classifies why a completion could not become a draft
type DraftErrorReason string

const (
	ReasonNoJSON         DraftErrorReason = "no_json"
	ReasonMalformedJSON  DraftErrorReason = "malformed_json"
	ReasonMissingTitle   DraftErrorReason = "missing_title"
	ReasonMissingContent DraftErrorReason = "missing_content"
	ReasonEmptyContent   DraftErrorReason = "empty_content"
)

// DraftError is returned by ParseDraft when the completion is unusable
type DraftError struct {
	Reason DraftErrorReason
	Err    error
}

func (e *DraftError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid draft (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid draft (%s)", e.Reason)
}

func (e *DraftError) Unwrap() error {
	return e.Err
}

// Draft is a validated, sanitized post draft
type Draft struct {
	Title      string
	Content    string
	Tags       []string
	ImageQuery string
}

// SearchQuery returns the image search query, falling back to the title
// and then to the keyword
func (d Draft) SearchQuery(keyword string) string {
	if q := strings.TrimSpace(d.ImageQuery); q != "" {
		return q
	}
	if d.Title != "" {
		return d.Title
	}
	return keyword
}

// rawDraft mirrors the JSON object requested from the model
type rawDraft struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Hashtags   json.RawMessage `json:"hashtags"`
	ImageQuery string          `json:"imageQuery"`
}

// ParseDraft extracts the JSON object from a raw completion, validates the
// required fields and sanitizes the content. The returned error, if any, is a
// *DraftError.
func ParseDraft(raw, keyword string) (Draft, error) {
	span := ExtractJSONObject(raw)
	if span == "" {
		return Draft{}, &DraftError{Reason: ReasonNoJSON}
	}

	var parsed rawDraft
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return Draft{}, &DraftError{Reason: ReasonMalformedJSON, Err: err}
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return Draft{}, &DraftError{Reason: ReasonMissingTitle}
	}
	if strings.TrimSpace(parsed.Content) == "" {
		return Draft{}, &DraftError{Reason: ReasonMissingContent}
	}

	// Image-only drafts leave nothing to publish once sanitized
	content := SanitizeContent(parsed.Content)
	if content == "" {
		return Draft{}, &DraftError{Reason: ReasonEmptyContent}
	}

	return Draft{
		Title:      title,
		Content:    content,
		Tags:       normalizeTags(parsed.Hashtags, keyword),
		ImageQuery: strings.TrimSpace(parsed.ImageQuery),
	}, nil
}

// ExtractJSONObject returns the span from the first '{' to the last '}' in s,
// or "" when there is none
func ExtractJSONObject(s string) string {
	return jsonObjectRegex.FindString(s)
}

// SanitizeContent strips embedded image markup and raw image-file URLs
func SanitizeContent(content string) string {
	content = markdownImageRegex.ReplaceAllString(content, "")
	content = imageURLRegex.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// normalizeTags keeps the model's hashtags when they form a non-empty array
// of strings and otherwise falls back to the keyword alone
func normalizeTags(rawTags json.RawMessage, keyword string) []string {
	var tags []string
	if len(rawTags) == 0 || json.Unmarshal(rawTags, &tags) != nil || len(tags) == 0 {
		return []string{keyword}
	}
	return tags
}
