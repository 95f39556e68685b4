// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArg  string
		wantOK   bool
	}{
		{"/new", "new", "", true},
		{"/new weekend plans", "new", "weekend plans", true},
		{"/attach /tmp/shot.png", "attach", "/tmp/shot.png", true},
		{"/MODEL claude-sonnet-4-5-thinking", "model", "claude-sonnet-4-5-thinking", true},
		{"/unlink a@example.com", "unlink", "a@example.com", true},
		{"/search  padded query ", "search", "padded query", true},
		{"plain message", "", "", false},
		{"not /a command", "", "", false},
		{"/", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			name, arg, ok := parseCommand(tc.in)
			if ok != tc.wantOK || name != tc.wantName || arg != tc.wantArg {
				t.Errorf("parseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tc.in, name, arg, ok, tc.wantName, tc.wantArg, tc.wantOK)
			}
		})
	}
}
