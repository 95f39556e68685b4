// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"sync"
	"time"
)

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds a titled, ordered sequence of messages. Sessions are
// owned by the history store; the conversation engine only ever holds the
// session ID of the active session, never a duplicate copy that can drift.
type ChatSession struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"timestamp"`
	Messages  []*Message `json:"messages"`
}

// NewChatSession creates a session with a creation-time-derived unique ID.
func NewChatSession(title string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        generateSessionID(now),
		Title:     title,
		CreatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// Append adds a message to the session. Past messages are never mutated.
func (s *ChatSession) Append(msg *Message) {
	s.Messages = append(s.Messages, msg)
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// LastMessage returns the most recent message, or nil for an empty session.
func (s *ChatSession) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// =============================================================================
// SESSION ID GENERATION
// =============================================================================

var (
	idMu      sync.Mutex
	idLastMs  int64
	idCounter int
)

// generateSessionID derives an ID from the creation timestamp. Two creations
// within the same millisecond get a counter suffix, so IDs stay unique within
// the process even when the clock does not advance between calls.
func generateSessionID(now time.Time) string {
	ms := now.UnixMilli()

	idMu.Lock()
	defer idMu.Unlock()

	if ms <= idLastMs {
		idCounter++
		return strconv.FormatInt(idLastMs, 10) + "-" + strconv.Itoa(idCounter)
	}
	idLastMs = ms
	idCounter = 0
	return strconv.FormatInt(ms, 10)
}
