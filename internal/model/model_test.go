// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// SESSION ID TESTS
// =============================================================================

func TestNewChatSession_UniqueIDsSameInstant(t *testing.T) {
	// Two creations within the same clock tick must still get distinct IDs.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewChatSession("New Conversation")
		if seen[s.ID] {
			t.Fatalf("duplicate session ID %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestGenerateSessionID_SameMillisecond(t *testing.T) {
	now := time.Now()
	a := generateSessionID(now)
	b := generateSessionID(now)
	c := generateSessionID(now)
	if a == b || b == c || a == c {
		t.Errorf("IDs not unique for same instant: %q %q %q", a, b, c)
	}
}

func TestNewChatSession_Fields(t *testing.T) {
	s := NewChatSession("hello")
	if s.Title != "hello" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if !s.IsEmpty() {
		t.Error("new session should be empty")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessage(t *testing.T) {
	m := NewAssistantMessage("Hi there")
	if m.Role != RoleAssistant {
		t.Errorf("Role = %q", m.Role)
	}
	if len(m.Content) != 1 || !m.Content[0].IsText() || m.Content[0].Text != "Hi there" {
		t.Errorf("Content = %+v", m.Content)
	}
	if m.DisplayText != "Hi there" {
		t.Errorf("DisplayText = %q", m.DisplayText)
	}
}

func TestMessage_ImageCountAndText(t *testing.T) {
	m := NewUserMessage([]ContentPart{
		NewImagePart("image/png", "aGVsbG8="),
		NewImagePart("image/jpeg", "d29ybGQ="),
		NewTextPart("caption"),
	}, "caption")

	if got := m.ImageCount(); got != 2 {
		t.Errorf("ImageCount = %d, want 2", got)
	}
	if got := m.TextContent(); got != "caption" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestMessage_Preview(t *testing.T) {
	m := NewAssistantMessage("first line\nsecond line")
	if got := m.Preview(50); got != "first line" {
		t.Errorf("Preview = %q", got)
	}
}

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("other"), "other"},
	}
	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// ACCOUNT TESTS
// =============================================================================

func TestFindAccount(t *testing.T) {
	accounts := []Account{
		{Email: "a@example.com", SessionKey: "sk-1"},
		{Email: "b@example.com"},
	}

	got, ok := FindAccount(accounts, "a@example.com")
	if !ok || got.SessionKey != "sk-1" {
		t.Errorf("FindAccount(a) = %+v, %v", got, ok)
	}
	if !got.HasCredential() {
		t.Error("account a should have a credential")
	}

	// A selected email may reference an account that was removed server-side;
	// lookups must report absence rather than assume validity.
	if _, ok := FindAccount(accounts, "gone@example.com"); ok {
		t.Error("FindAccount should miss for removed account")
	}
}
