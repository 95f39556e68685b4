// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/proxychat-tui/internal/model"
)

func writeTempImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// =============================================================================
// STAGING
// =============================================================================

func TestStageAttachment(t *testing.T) {
	path := writeTempImage(t, "shot.png", []byte("png-bytes"))

	att, err := StageAttachment(path)
	require.NoError(t, err)
	require.Equal(t, "shot.png", att.Name)
	require.Equal(t, "image/png", att.MediaType)
	require.NotEmpty(t, att.ID)
}

func TestStageAttachment_Rejections(t *testing.T) {
	dir := t.TempDir()
	textFile := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("hi"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.png")},
		{"directory", dir},
		{"non-image", textFile},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := StageAttachment(tc.path)
			require.Error(t, err)
		})
	}
}

func TestComposer_AttachDetach(t *testing.T) {
	c := NewComposer()
	a1, err := c.Attach(writeTempImage(t, "a.png", []byte("a")))
	require.NoError(t, err)
	a2, err := c.Attach(writeTempImage(t, "b.jpg", []byte("b")))
	require.NoError(t, err)
	require.Len(t, c.Attachments(), 2)

	c.Detach(a1.ID)
	require.Len(t, c.Attachments(), 1)
	require.Equal(t, a2.ID, c.Attachments()[0].ID)

	c.Detach("unknown") // no-op
	require.Len(t, c.Attachments(), 1)

	c.DetachLast()
	require.Empty(t, c.Attachments())
}

// =============================================================================
// BUILDING
// =============================================================================

func TestBuildUserMessage_TextOnly(t *testing.T) {
	msg, err := BuildUserMessage("  hello there  ", nil)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, msg.Role)
	require.Len(t, msg.Content, 1)
	require.Equal(t, "hello there", msg.Content[0].Text)
	require.Equal(t, "hello there", msg.DisplayText)
}

func TestBuildUserMessage_ImagesBeforeText(t *testing.T) {
	atts := []*Attachment{
		{ID: "1", Path: writeTempImage(t, "a.png", []byte("aaa")), Name: "a.png", MediaType: "image/png"},
		{ID: "2", Path: writeTempImage(t, "b.jpg", []byte("bbb")), Name: "b.jpg", MediaType: "image/jpeg"},
	}

	msg, err := BuildUserMessage("what are these?", atts)
	require.NoError(t, err)
	require.Len(t, msg.Content, 3)

	require.True(t, msg.Content[0].IsImage())
	require.Equal(t, "image/png", msg.Content[0].MediaType)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("aaa")), msg.Content[0].Data)
	require.True(t, msg.Content[1].IsImage())
	require.Equal(t, "image/jpeg", msg.Content[1].MediaType)
	require.True(t, msg.Content[2].IsText())
	require.Equal(t, "what are these?", msg.Content[2].Text)
	require.Equal(t, "what are these?", msg.DisplayText)
}

func TestBuildUserMessage_ImageOnlyPlaceholder(t *testing.T) {
	one := []*Attachment{
		{ID: "1", Path: writeTempImage(t, "a.png", []byte("a")), Name: "a.png", MediaType: "image/png"},
	}
	msg, err := BuildUserMessage("", one)
	require.NoError(t, err)
	require.Equal(t, "[1 image]", msg.DisplayText)

	two := append(one, &Attachment{
		ID: "2", Path: writeTempImage(t, "b.png", []byte("b")), Name: "b.png", MediaType: "image/png",
	})
	msg, err = BuildUserMessage("", two)
	require.NoError(t, err)
	require.Equal(t, "[2 images]", msg.DisplayText)
}

func TestBuildUserMessage_Empty(t *testing.T) {
	_, err := BuildUserMessage("   ", nil)
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestBuildUserMessage_UnreadableAttachmentAborts(t *testing.T) {
	good := writeTempImage(t, "good.png", []byte("ok"))
	atts := []*Attachment{
		{ID: "1", Path: good, Name: "good.png", MediaType: "image/png"},
		{ID: "2", Path: filepath.Join(t.TempDir(), "gone.png"), Name: "gone.png", MediaType: "image/png"},
	}

	_, err := BuildUserMessage("hi", atts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "gone.png")
}

func TestBuildUserMessage_NormalizesText(t *testing.T) {
	// "e" plus combining acute normalizes to the precomposed rune.
	msg, err := BuildUserMessage("café", nil)
	require.NoError(t, err)
	require.Equal(t, "café", msg.Content[0].Text)
}

func TestComposer_BuildResetsDraft(t *testing.T) {
	c := NewComposer()
	_, err := c.Attach(writeTempImage(t, "a.png", []byte("a")))
	require.NoError(t, err)

	msg, err := c.Build("hello")
	require.NoError(t, err)
	require.Len(t, msg.Content, 2)
	require.Empty(t, c.Attachments())
}

func TestComposer_FailedBuildKeepsDraft(t *testing.T) {
	c := NewComposer()
	_, err := c.Attach(writeTempImage(t, "a.png", []byte("a")))
	require.NoError(t, err)

	// Stage a file then delete it before sending.
	gone := writeTempImage(t, "b.png", []byte("b"))
	_, err = c.Attach(gone)
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))

	_, err = c.Build("hi")
	require.Error(t, err)
	require.Len(t, c.Attachments(), 2)
}
