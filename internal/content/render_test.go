// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	got, err := RenderHTML("# Başlık\n\nBir **kalın** paragraf.")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Başlık") {
		t.Errorf("missing heading in %q", got)
	}
	if !strings.Contains(got, "<strong>kalın</strong>") {
		t.Errorf("missing bold in %q", got)
	}
}

func TestRenderHTMLSanitizes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		banned  string
		allowed string
	}{
		{
			name:   "script tag stripped",
			input:  "hello <script>alert('x')</script> world",
			banned: "<script",
		},
		{
			name:   "event handler stripped",
			input:  `<img src="x.png" onerror="alert(1)">`,
			banned: "onerror",
		},
		{
			name:    "links survive",
			input:   "[iklim](https://iklimsesi.org)",
			allowed: `href="https://iklimsesi.org"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderHTML(tt.input)
			if err != nil {
				t.Fatalf("RenderHTML: %v", err)
			}
			if tt.banned != "" && strings.Contains(got, tt.banned) {
				t.Errorf("output %q still contains %q", got, tt.banned)
			}
			if tt.allowed != "" && !strings.Contains(got, tt.allowed) {
				t.Errorf("output %q lost %q", got, tt.allowed)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	md := "# İklim Raporu\n\nBu rapor **2026** yılına ait gözlemleri özetler."

	got := Excerpt(md, 200)
	if strings.Contains(got, "<") || strings.Contains(got, "#") || strings.Contains(got, "**") {
		t.Errorf("excerpt not plain text: %q", got)
	}
	if !strings.Contains(got, "İklim Raporu") {
		t.Errorf("excerpt lost heading text: %q", got)
	}
}

func TestExcerptTruncatesAtWordBoundary(t *testing.T) {
	md := strings.Repeat("kelime ", 100)

	got := Excerpt(md, 50)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated excerpt should end with ellipsis: %q", got)
	}
	body := strings.TrimSuffix(got, "…")
	if len([]rune(body)) > 50 {
		t.Errorf("excerpt too long: %d runes", len([]rune(body)))
	}
	if strings.HasSuffix(body, " ") {
		t.Errorf("excerpt ends mid-word padding: %q", got)
	}
}

func TestExcerptShortInputUntouched(t *testing.T) {
	got := Excerpt("kısa metin", 100)
	if got != "kısa metin" {
		t.Errorf("Excerpt = %q, want %q", got, "kısa metin")
	}
}
