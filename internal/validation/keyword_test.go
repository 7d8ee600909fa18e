package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestIsValidTrendKeyword(t *testing.T) {
	tests := []struct {
		keyword string
		want    bool
	}{
		{"손흥민", true},
		{"iPhone 16", true},
		{"날씨 weather", true},
		{"ㅋㅋ", true},
		{"東京", false},
		{"大谷 翔平", false},
		{"ひらがな", false},
		{"카타카나 カタカナ", false},
		{"2025", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			if got := IsValidTrendKeyword(tt.keyword); got != tt.want {
				t.Errorf("IsValidTrendKeyword(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestFilterTrendKeywords(t *testing.T) {
	input := []string{" 손흥민 ", "東京", "날씨", "손흥민", "bitcoin", "2025", "환율"}

	got := FilterTrendKeywords(input, 0)
	want := []string{"손흥민", "날씨", "bitcoin", "환율"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterTrendKeywords() = %v, want %v", got, want)
	}

	limited := FilterTrendKeywords(input, 2)
	if !reflect.DeepEqual(limited, []string{"손흥민", "날씨"}) {
		t.Errorf("Expected first two keywords, got %v", limited)
	}
}

func TestValidateImportKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		wantErr bool
	}{
		{"hangul", "손흥민", false},
		{"han is allowed", "東京", false},
		{"empty", "", true},
		{"control character", "bit\x07coin", true},
		{"at limit", strings.Repeat("가", 10), false},
		{"over limit", strings.Repeat("가", 11), true},
		{"invalid utf8", "\xff\xfe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImportKeyword(tt.keyword, 10)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImportKeyword(%q) error = %v, wantErr %v", tt.keyword, err, tt.wantErr)
			}
		})
	}
}
