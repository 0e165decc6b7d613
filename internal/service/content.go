// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExcerptLength is the rune limit of an excerpt derived from post content.
const ExcerptLength = 200

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	// htmlSanitizer keeps safe formatting in rendered post bodies.
	htmlSanitizer = bluemonday.UGCPolicy()

	// textStripper removes every tag, leaving escaped text.
	textStripper = bluemonday.StrictPolicy()
)

// RenderContent converts markdown post content to sanitized HTML.
func RenderContent(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// maxStripPasses bounds how many layers of entity encoding StripTags peels.
const maxStripPasses = 4

// StripTags removes all markup from s and trims surrounding whitespace.
// Line breaks inside the text are kept. Entities are decoded and the result
// stripped again until it is stable, so encoded tags never come back as
// markup. Input still changing after maxStripPasses is returned escaped.
func StripTags(s string) string {
	for range maxStripPasses {
		out := html.UnescapeString(textStripper.Sanitize(s))
		if out == s {
			return strings.TrimSpace(out)
		}
		s = out
	}
	return strings.TrimSpace(textStripper.Sanitize(s))
}

// StripHTML returns the plain text of s with whitespace collapsed.
func StripHTML(s string) string {
	return strings.Join(strings.Fields(StripTags(s)), " ")
}

// BuildExcerpt derives an excerpt from markdown content: the rendered text,
// cut to at most limit runes on a word boundary.
func BuildExcerpt(content string, limit int) string {
	rendered, err := RenderContent(content)
	if err != nil {
		rendered = content
	}
	return truncateWords(StripHTML(rendered), limit)
}

// truncateWords shortens s to at most limit runes, preferring to cut at a
// space, and marks the cut with an ellipsis.
func truncateWords(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
