// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/proxychat-tui/internal/model"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func sessionWith(title string, texts ...string) *model.ChatSession {
	sess := model.NewChatSession(title)
	for i, text := range texts {
		if i%2 == 0 {
			sess.Append(model.NewUserMessage([]model.ContentPart{model.NewTextPart(text)}, text))
		} else {
			sess.Append(model.NewAssistantMessage(text))
		}
	}
	return sess
}

func TestIndex_RebuildAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	sessions := []*model.ChatSession{
		sessionWith("go questions", "how do goroutines work?", "They are lightweight threads."),
		sessionWith("cooking", "best pasta recipe?", "Start with good tomatoes."),
	}
	require.NoError(t, idx.Rebuild(ctx, sessions))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	hits, err := idx.Search(ctx, "goroutines", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "go questions", hits[0].SessionTitle)
	require.Equal(t, model.RoleUser, hits[0].Role)
	require.Equal(t, 0, hits[0].Position)
}

func TestIndex_SearchCaseInsensitive(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{
		sessionWith("chat", "Tell me about SQLite"),
	}))

	for _, q := range []string{"sqlite", "SQLITE", "SqLiTe"} {
		hits, err := idx.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1, "query %q", q)
	}
}

func TestIndex_SearchEdgeCases(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{
		sessionWith("chat", "100% done", "under_score"),
	}))

	// Blank query returns nothing.
	hits, err := idx.Search(ctx, "   ", 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	// LIKE wildcards in the query are literal.
	hits, err = idx.Search(ctx, "100%", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = idx.Search(ctx, "under_score", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// "_" must not act as a single-character wildcard.
	hits, err = idx.Search(ctx, "undersscore", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestIndex_RebuildReplaces(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{
		sessionWith("old", "ancient history"),
	}))
	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{
		sessionWith("new", "fresh content"),
	}))

	hits, err := idx.Search(ctx, "ancient", 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	hits, err = idx.Search(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestIndex_LimitApplied(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	sess := sessionWith("chat",
		"match one", "match two", "match three", "match four")
	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{sess}))

	hits, err := idx.Search(ctx, "match", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestIndex_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.db")
	ctx := context.Background()

	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(ctx, []*model.ChatSession{sessionWith("chat", "persisted")}))
	require.NoError(t, idx.Close())

	idx, err = Open(path)
	require.NoError(t, err)
	defer idx.Close()

	hits, err := idx.Search(ctx, "persisted", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}
