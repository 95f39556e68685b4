// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose builds outgoing user messages from text and staged image
// attachments.
//
// Attachments are staged by path and only read from disk at send time, so a
// file that changes between staging and sending contributes its bytes as they
// are at the moment of sending. A file that becomes unreadable aborts the
// whole composition; a message is never sent with a silently missing image.
package compose

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/util"
)

// ErrEmptyMessage is returned when a composition has neither text nor
// attachments.
var ErrEmptyMessage = errors.New("message has no content")

// =============================================================================
// ATTACHMENTS
// =============================================================================

// Attachment is a staged image, identified by path. The bytes are not read
// until the message is built.
type Attachment struct {
	ID        string
	Path      string
	Name      string
	MediaType string
}

// StageAttachment validates a path and returns a staged attachment. The file
// must exist and carry an image media type by extension.
func StageAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot attach %s: is a directory", path)
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("cannot attach %s: not an image", path)
	}

	return &Attachment{
		ID:        uuid.NewString(),
		Path:      path,
		Name:      filepath.Base(path),
		MediaType: mediaType,
	}, nil
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer accumulates the draft for the next user message: the text being
// typed plus any staged attachments.
type Composer struct {
	attachments []*Attachment
}

// NewComposer returns an empty composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Attachments returns the staged attachments in staging order.
func (c *Composer) Attachments() []*Attachment {
	return c.attachments
}

// Attach stages an image by path.
func (c *Composer) Attach(path string) (*Attachment, error) {
	att, err := StageAttachment(path)
	if err != nil {
		return nil, err
	}
	c.attachments = append(c.attachments, att)
	return att, nil
}

// Detach removes a staged attachment by ID. Unknown IDs are a no-op.
func (c *Composer) Detach(id string) {
	for i, att := range c.attachments {
		if att.ID == id {
			c.attachments = append(c.attachments[:i], c.attachments[i+1:]...)
			return
		}
	}
}

// DetachLast removes the most recently staged attachment.
func (c *Composer) DetachLast() {
	if n := len(c.attachments); n > 0 {
		c.attachments = c.attachments[:n-1]
	}
}

// Clear drops all staged attachments.
func (c *Composer) Clear() {
	c.attachments = nil
}

// Build reads every staged attachment, assembles the outgoing message, and on
// success resets the composer. Image parts come before the text part, in
// staging order. Any unreadable attachment aborts the build naming the file,
// leaving the draft intact so the user can detach it and retry.
func (c *Composer) Build(text string) (*model.Message, error) {
	msg, err := BuildUserMessage(text, c.attachments)
	if err != nil {
		return nil, err
	}
	c.attachments = nil
	return msg, nil
}

// BuildUserMessage assembles a user message from text and attachments without
// touching composer state.
func BuildUserMessage(text string, attachments []*Attachment) (*model.Message, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	parts := make([]model.ContentPart, 0, len(attachments)+1)
	for _, att := range attachments {
		data, err := os.ReadFile(att.Path)
		if err != nil {
			return nil, fmt.Errorf("cannot read attachment %s: %w", att.Name, err)
		}
		parts = append(parts, model.NewImagePart(att.MediaType, base64.StdEncoding.EncodeToString(data)))
	}
	if text != "" {
		parts = append(parts, model.NewTextPart(text))
	}

	return model.NewUserMessage(parts, displayText(text, len(attachments))), nil
}

// displayText is the human-readable form stored alongside the message: the
// literal text when there is any, otherwise an image placeholder.
func displayText(text string, imageCount int) string {
	if text != "" {
		return text
	}
	return fmt.Sprintf("[%d %s]", imageCount, util.Pluralize(imageCount, "image", "images"))
}
