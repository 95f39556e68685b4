// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"github.com/jeranaias/proxychat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// CONTENT PARTS
// =============================================================================

// Content part types.
const (
	PartText  = "text"
	PartImage = "image"
)

// ContentPart is one unit of message content: either a text block or an
// inline base64-encoded image. The Type field discriminates which of the
// remaining fields are meaningful.
type ContentPart struct {
	Type string `json:"type"`

	// Text content (Type == PartText)
	Text string `json:"text,omitempty"`

	// Image content (Type == PartImage)
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"` // base64-encoded bytes
}

// NewTextPart creates a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// NewImagePart creates an inline image content part from base64 data.
func NewImagePart(mediaType, data string) ContentPart {
	return ContentPart{Type: PartImage, MediaType: mediaType, Data: data}
}

// IsText reports whether the part is a text block.
func (p ContentPart) IsText() bool { return p.Type == PartText }

// IsImage reports whether the part is an inline image.
func (p ContentPart) IsImage() bool { return p.Type == PartImage }

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a session. Messages are never edited
// after they are appended; the engine only ever adds new turns.
//
// Content keeps images (if any) ordered before any trailing text, matching how
// the composer builds user turns. The order matters when the history is sent
// back to the completion service.
type Message struct {
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`

	// DisplayText is the pre-rendered human-readable form: the literal text
	// for text turns, or a placeholder like "[2 images]" for image-only turns.
	DisplayText string `json:"displayText"`
}

// NewUserMessage creates a user message from already-ordered content parts.
func NewUserMessage(parts []ContentPart, displayText string) *Message {
	return &Message{
		Role:        RoleUser,
		Content:     parts,
		DisplayText: displayText,
	}
}

// NewAssistantMessage creates an assistant message holding a single text
// block. Both the reply text and error turns use this shape.
func NewAssistantMessage(text string) *Message {
	return &Message{
		Role:        RoleAssistant,
		Content:     []ContentPart{NewTextPart(text)},
		DisplayText: text,
	}
}

// ImageCount returns the number of image parts in the message.
func (m *Message) ImageCount() int {
	n := 0
	for _, p := range m.Content {
		if p.IsImage() {
			n++
		}
	}
	return n
}

// TextContent returns the concatenated text parts of the message.
func (m *Message) TextContent() string {
	var out string
	for _, p := range m.Content {
		if p.IsText() {
			out += p.Text
		}
	}
	return out
}

// Preview returns a one-line truncated preview of the message.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.DisplayText), maxRunes)
}

// IsEmpty returns true if the message has no content parts.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}
