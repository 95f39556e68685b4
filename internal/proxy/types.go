// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package proxy provides the HTTP client for the local completion proxy.
package proxy

import (
	"github.com/jeranaias/proxychat-tui/internal/model"
)

// =============================================================================
// MESSAGE WIRE TYPES
// =============================================================================

// ContentBlock is one unit of content in the Anthropic-style wire format.
// Text blocks carry Text; image blocks carry a base64 Source.
type ContentBlock struct {
	Type   string       `json:"type"` // "text" or "image"
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource is the inline image payload of an image content block.
type ImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// APIMessage is a single turn in the request message list.
type APIMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// MessagesRequest is the request body for POST /v1/messages.
type MessagesRequest struct {
	Model     string       `json:"model"`
	Messages  []APIMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens"`
	Stream    bool         `json:"stream"`
}

// MessagesResponse is the success body of POST /v1/messages.
type MessagesResponse struct {
	Content []ContentBlock `json:"content"`
}

// TextBlocks returns the text of every text-typed content block, in order.
func (r *MessagesResponse) TextBlocks() []string {
	var out []string
	for _, b := range r.Content {
		if b.Type == "text" {
			out = append(out, b.Text)
		}
	}
	return out
}

// apiError is the error body the proxy returns on any non-2xx status.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// MODEL LISTING TYPES
// =============================================================================

// ModelInfo describes one model offered by the proxy.
type ModelInfo struct {
	ID string `json:"id"`
}

// modelsResponse is the body of GET /v1/models. Some proxy builds wrap the
// list in a data field, others return a bare array; the client accepts both.
type modelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// =============================================================================
// HEALTH / ACCOUNTS / OAUTH TYPES
// =============================================================================

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

// accountsResponse is the body of GET /accounts.
type accountsResponse struct {
	Accounts []model.Account `json:"accounts"`
}

// removeError is the error body of DELETE /accounts/{email}.
type removeError struct {
	Message string `json:"message"`
}

// OAuthStart is the body of POST /oauth/start: the authorization URL to open
// and the opaque state token the status endpoint is keyed by.
type OAuthStart struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// OAuth flow statuses reported by GET /oauth/status/{state}.
const (
	OAuthPending   = "pending"
	OAuthCompleted = "completed"
	OAuthFailed    = "failed"
)

// OAuthStatus is the body of GET /oauth/status/{state}.
type OAuthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// =============================================================================
// MODEL CONVERSION
// =============================================================================

// ToAPIMessage converts a session message to the wire format, preserving each
// content part's type and order exactly. Past multi-part turns are never
// flattened to plain text.
func ToAPIMessage(msg *model.Message) APIMessage {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, p := range msg.Content {
		switch {
		case p.IsImage():
			blocks = append(blocks, ContentBlock{
				Type: "image",
				Source: &ImageSource{
					Type:      "base64",
					MediaType: p.MediaType,
					Data:      p.Data,
				},
			})
		case p.IsText():
			blocks = append(blocks, ContentBlock{Type: "text", Text: p.Text})
		}
	}
	return APIMessage{Role: msg.Role.String(), Content: blocks}
}

// ToAPIMessages converts an ordered message history to the wire format.
func ToAPIMessages(msgs []*model.Message) []APIMessage {
	out := make([]APIMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ToAPIMessage(m))
	}
	return out
}
