// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders markdown bodies to sanitized HTML and derives
// plain-text excerpts. Client-side validation is untrusted; everything
// passing through here is re-sanitized server-side.
package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// sanitizer strips everything not allowed in user-generated content.
var sanitizer = bluemonday.UGCPolicy()

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// RenderHTML converts markdown to sanitized HTML.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// Excerpt derives a plain-text excerpt from markdown, truncated to at
// most maxLen runes at a word boundary.
func Excerpt(md string, maxLen int) string {
	rendered, err := RenderHTML(md)
	if err != nil {
		rendered = md
	}
	text := tagRegex.ReplaceAllString(rendered, " ")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	if i := strings.LastIndexByte(truncated, ' '); i > 0 {
		truncated = truncated[:i]
	}
	return truncated + "…"
}
