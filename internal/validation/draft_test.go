package validation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantReason DraftErrorReason
		wantTitle  string
		wantTags   []string
	}{
		{
			name:      "plain json object",
			raw:       `{"title":"AI 저작권 논란","content":"## 배경\n\n본문","hashtags":["AI","저작권"],"imageQuery":"copyright"}`,
			wantTitle: "AI 저작권 논란",
			wantTags:  []string{"AI", "저작권"},
		},
		{
			name:      "object wrapped in prose",
			raw:       "Sure! Here is your post:\n```json\n{\"title\":\"T\",\"content\":\"C\",\"hashtags\":[\"x\"]}\n```\nEnjoy.",
			wantTitle: "T",
			wantTags:  []string{"x"},
		},
		{
			name:       "no json at all",
			raw:        "I cannot help with that.",
			wantReason: ReasonNoJSON,
		},
		{
			name:       "unbalanced braces",
			raw:        `{"title": "T", "content": "C"`,
			wantReason: ReasonNoJSON,
		},
		{
			name:       "malformed json",
			raw:        `{"title": "T", content: C}`,
			wantReason: ReasonMalformedJSON,
		},
		{
			name:       "title of wrong type",
			raw:        `{"title": 42, "content": "C"}`,
			wantReason: ReasonMalformedJSON,
		},
		{
			name:       "missing title",
			raw:        `{"content":"C","hashtags":["x"]}`,
			wantReason: ReasonMissingTitle,
		},
		{
			name:       "blank title",
			raw:        `{"title":"   ","content":"C"}`,
			wantReason: ReasonMissingTitle,
		},
		{
			name:       "missing content",
			raw:        `{"title":"T"}`,
			wantReason: ReasonMissingContent,
		},
		{
			name:       "content only images",
			raw:        `{"title":"T","content":"![alt](https://x/y.png) https://cdn.example.com/a.JPG"}`,
			wantReason: ReasonEmptyContent,
		},
		{
			name:      "missing hashtags fall back to keyword",
			raw:       `{"title":"T","content":"C"}`,
			wantTitle: "T",
			wantTags:  []string{"kw"},
		},
		{
			name:      "empty hashtags fall back to keyword",
			raw:       `{"title":"T","content":"C","hashtags":[]}`,
			wantTitle: "T",
			wantTags:  []string{"kw"},
		},
		{
			name:      "non-array hashtags fall back to keyword",
			raw:       `{"title":"T","content":"C","hashtags":"#a #b"}`,
			wantTitle: "T",
			wantTags:  []string{"kw"},
		},
		{
			name:      "null hashtags fall back to keyword",
			raw:       `{"title":"T","content":"C","hashtags":null}`,
			wantTitle: "T",
			wantTags:  []string{"kw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := ParseDraft(tt.raw, "kw")
			if tt.wantReason != "" {
				var draftErr *DraftError
				if !errors.As(err, &draftErr) {
					t.Fatalf("Expected *DraftError, got %v", err)
				}
				if draftErr.Reason != tt.wantReason {
					t.Errorf("Expected reason %s, got %s", tt.wantReason, draftErr.Reason)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if draft.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, draft.Title)
			}
			if !reflect.DeepEqual(draft.Tags, tt.wantTags) {
				t.Errorf("Expected tags %v, got %v", tt.wantTags, draft.Tags)
			}
		})
	}
}

func TestParseDraft_SanitizesContent(t *testing.T) {
	raw := `{"title":"T","content":"  Intro ![photo](https://img.example.com/p.jpg)\n\nSee https://cdn.example.com/pic.WEBP for more.\n\nLink https://example.com/page stays.  "}`

	draft, err := ParseDraft(raw, "kw")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Contains(draft.Content, "![") {
		t.Errorf("Markdown image should be stripped: %q", draft.Content)
	}
	if strings.Contains(strings.ToLower(draft.Content), ".webp") || strings.Contains(draft.Content, ".jpg") {
		t.Errorf("Image URLs should be stripped: %q", draft.Content)
	}
	if !strings.Contains(draft.Content, "https://example.com/page") {
		t.Errorf("Non-image links should be kept: %q", draft.Content)
	}
	if draft.Content != strings.TrimSpace(draft.Content) {
		t.Errorf("Content should be trimmed: %q", draft.Content)
	}
	if !strings.HasPrefix(draft.Content, "Intro") {
		t.Errorf("Expected content to start with Intro, got %q", draft.Content)
	}
}

func TestDraft_SearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  string
	}{
		{name: "image query wins", draft: Draft{Title: "Title", ImageQuery: "city skyline"}, want: "city skyline"},
		{name: "title when no query", draft: Draft{Title: "Title"}, want: "Title"},
		{name: "blank query falls back", draft: Draft{Title: "Title", ImageQuery: "  "}, want: "Title"},
		{name: "keyword last", draft: Draft{}, want: "kw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.draft.SearchQuery("kw"); got != tt.want {
				t.Errorf("SearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	if got := ExtractJSONObject("prefix {\"a\":{\"b\":1}} suffix"); got != `{"a":{"b":1}}` {
		t.Errorf("Unexpected span: %q", got)
	}
	if got := ExtractJSONObject("no braces"); got != "" {
		t.Errorf("Expected empty span, got %q", got)
	}
	if got := ExtractJSONObject("{\n\"multi\":\n\"line\"\n}"); got == "" {
		t.Error("Expected multi-line object to be found")
	}
}

func TestDraftError_Unwrap(t *testing.T) {
	_, err := ParseDraft(`{"title": "T", broken}`, "kw")
	var draftErr *DraftError
	if !errors.As(err, &draftErr) {
		t.Fatalf("Expected *DraftError, got %T", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("Malformed JSON error should wrap the decoder error")
	}
	if !strings.Contains(err.Error(), string(ReasonMalformedJSON)) {
		t.Errorf("Error message should mention the reason: %s", err.Error())
	}
}
