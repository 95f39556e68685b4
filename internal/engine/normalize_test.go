// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import "testing"

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"bold", "**Hi** there", "Hi there"},
		{"italic", "this is *important* stuff", "this is important stuff"},
		{"bold before italic", "**bold** and *italic*", "bold and italic"},
		{"inline code", "run `go help` first", "run go help first"},
		{"dash bullet", "- first\n- second", "• first\n• second"},
		{"star bullet", "* first\n* second", "• first\n• second"},
		{"indented bullet", "  - nested item", "• nested item"},
		{"heading stripped", "# Title\nbody", "Title\nbody"},
		{"deep heading", "### Section\ntext", "Section\ntext"},
		{"surrounding whitespace", "\n\n  hi  \n\n", "hi"},
		{"unclosed bold kept", "**dangling", "**dangling"},
		{"empty", "", ""},
		{
			"mixed document",
			"# Answer\n\n**Yes**, you can:\n- use `x`\n- or *y*",
			"Answer\n\nYes, you can:\n• use x\n• or y",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanMarkdown(tc.in); got != tc.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanReply(t *testing.T) {
	got := CleanReply([]string{"**one**", "# two"})
	if got != "one\ntwo" {
		t.Errorf("CleanReply = %q", got)
	}
	if CleanReply(nil) != "" {
		t.Error("CleanReply(nil) should be empty")
	}
}
