// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search provides full-history transcript search backed by SQLite.
//
// The index is derivative: it is rebuilt from the history snapshot whenever
// the snapshot changes, so it can always be deleted and regenerated. Queries
// stay fast even when the transcript grows past what a linear scan of the
// snapshot handles comfortably.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/proxychat-tui/internal/model"
)

// =============================================================================
// INDEX
// =============================================================================

// Index is the transcript search database.
type Index struct {
	db *sql.DB
}

// Open opens (creating if needed) the search database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	idx := &Index{db: db}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		session_id    TEXT NOT NULL,
		session_title TEXT NOT NULL,
		position      INTEGER NOT NULL,
		role          TEXT NOT NULL,
		body          TEXT NOT NULL,
		body_lower    TEXT NOT NULL,
		PRIMARY KEY (session_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_body ON messages(body_lower);
	`
	if _, err := i.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// =============================================================================
// REBUILD
// =============================================================================

// Rebuild replaces the whole index with the given sessions in one
// transaction. Image-only turns are indexed by their display text.
func (i *Index) Rebuild(ctx context.Context, sessions []*model.ChatSession) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (session_id, session_title, position, role, body, body_lower) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sess := range sessions {
		for pos, msg := range sess.Messages {
			body := msg.DisplayText
			if body == "" {
				continue
			}
			_, err := stmt.ExecContext(ctx, sess.ID, sess.Title, pos, msg.Role.String(), body, strings.ToLower(body))
			if err != nil {
				return fmt.Errorf("failed to index message: %w", err)
			}
		}
	}

	return tx.Commit()
}

// =============================================================================
// QUERIES
// =============================================================================

// Hit is one search result.
type Hit struct {
	SessionID    string
	SessionTitle string
	Position     int
	Role         model.Role
	Body         string
}

// Search returns messages containing the query, case-insensitively, newest
// sessions first. A blank query returns nothing.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := i.db.QueryContext(ctx, `
		SELECT session_id, session_title, position, role, body
		FROM messages
		WHERE body_lower LIKE ? ESCAPE '\'
		ORDER BY session_id DESC, position ASC
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var role string
		if err := rows.Scan(&h.SessionID, &h.SessionTitle, &h.Position, &role, &h.Body); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		h.Role = model.Role(role)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of indexed messages.
func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// escapeLike escapes the LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
