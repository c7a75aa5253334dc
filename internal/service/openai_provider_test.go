package service

import (
	"strings"
	"testing"
)

func TestParseProviderResult(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"title":"T","html":"<p>Hi</p>","tags":["a"],"meta_description":"d"}`,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"title\":\"T\",\"html\":\"<p>Hi</p>\"}\n```",
		},
		{
			name: "bare fence",
			raw:  "```\n{\"title\":\"T\",\"html\":\"<p>Hi</p>\"}\n```",
		},
		{
			name:    "missing html",
			raw:     `{"title":"T","html":""}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "Sure! Here is your article:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseProviderResult(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseProviderResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && result.Title != "T" {
				t.Errorf("Title = %q, want T", result.Title)
			}
		})
	}
}

func TestNormalizeBodyConvertsMarkdown(t *testing.T) {
	got := normalizeBody("# Title\n\nSome **bold** text.\n\n## Section\n\nMore.")

	if strings.Contains(got, "<h1") {
		t.Errorf("top heading survived normalization: %q", got)
	}
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("markdown was not converted to HTML: %q", got)
	}
	if !strings.Contains(got, "<h2") {
		t.Errorf("section heading missing from converted body: %q", got)
	}
}

func TestNormalizeBodyStripsTopHeadingFromHTML(t *testing.T) {
	got := normalizeBody(`<h1>Big Title</h1><h2>Section</h2><p>Body.</p>`)

	if strings.Contains(got, "Big Title") {
		t.Errorf("h1 content survived: %q", got)
	}
	if !strings.Contains(got, "<h2>Section</h2>") {
		t.Errorf("body content lost: %q", got)
	}
}
