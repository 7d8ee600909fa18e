package slug

import (
	"regexp"
	"testing"
)

var slugShape = regexp.MustCompile(`^([ㄱ-힝a-z0-9]+(-[ㄱ-힝a-z0-9]+)*)?$`)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "ascii title", title: "Hello World", want: "hello-world"},
		{name: "punctuation removed", title: "Why AI Copyright Matters?!", want: "why-ai-copyright-matters"},
		{name: "hangul kept", title: "왜 지금 'AI 저작권'이 논란인가?", want: "왜-지금-ai-저작권이-논란인가"},
		{name: "whitespace collapsed", title: "  many \t spaces \n here  ", want: "many-spaces-here"},
		{name: "hyphen runs collapsed", title: "a -- b --- c", want: "a-b-c"},
		{name: "edge hyphens trimmed", title: "--edge case--", want: "edge-case"},
		{name: "digits kept", title: "Top 10 trends of 2025", want: "top-10-trends-of-2025"},
		{name: "cjk ideographs kept", title: "東京 Tokyo 旅行", want: "東京-tokyo-旅行"},
		{name: "kana removed", title: "ラーメン ramen", want: "ramen"},
		{name: "no-break space", title: "AI\u00a0저작권 논란", want: "ai-저작권-논란"},
		{name: "ideographic space", title: "트렌드\u3000스캐너", want: "트렌드-스캐너"},
		{name: "em space", title: "hello\u2003world", want: "hello-world"},
		{name: "byte order mark", title: "\ufeffhello\ufeffworld", want: "hello-world"},
		{name: "line separator", title: "one\u2028two", want: "one-two"},
		{name: "emoji removed", title: "🔥 Hot Topic 🔥", want: "hot-topic"},
		{name: "only symbols", title: "!!!???", want: ""},
		{name: "empty", title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.title)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestGenerate_IdempotentAndWellFormed(t *testing.T) {
	titles := []string{
		"Hello World",
		"  --Mixed   Case -- Title--  ",
		"트렌드 스캐너: 오늘의 키워드",
		"C++ & Go: a comparison (2024)",
		"ㄱㄴㄷ 자모 test",
		"tabs\tand\nnewlines",
		"wide\u3000space\u00a0and 東京",
	}

	for _, title := range titles {
		first := Generate(title)
		if second := Generate(first); second != first {
			t.Errorf("Generate not idempotent for %q: %q then %q", title, first, second)
		}
		if again := Generate(title); again != first {
			t.Errorf("Generate not deterministic for %q: %q vs %q", title, first, again)
		}
		if !slugShape.MatchString(first) {
			t.Errorf("Generate(%q) = %q has unexpected shape", title, first)
		}
	}
}
