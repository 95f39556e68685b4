// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"regexp"
	"strings"
)

// Replies come back as markdown but the chat pane renders plain text, so the
// common inline markers are stripped and bullets get a uniform glyph.
var (
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic  = regexp.MustCompile(`\*(.+?)\*`)
	reCode    = regexp.MustCompile("`(.+?)`")
	reBullet  = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	reHeading = regexp.MustCompile(`(?m)^#+\s+`)
)

// CleanMarkdown strips inline markdown from reply text. Bold runs before
// italic so "**x**" loses both stars instead of leaving "*x*" behind.
func CleanMarkdown(s string) string {
	s = reBold.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reCode.ReplaceAllString(s, "$1")
	s = reBullet.ReplaceAllString(s, "• ")
	s = reHeading.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanReply cleans each text block of a reply and joins them with newlines.
func CleanReply(blocks []string) string {
	cleaned := make([]string, 0, len(blocks))
	for _, b := range blocks {
		cleaned = append(cleaned, CleanMarkdown(b))
	}
	return strings.Join(cleaned, "\n")
}
