// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat sessions as a single JSON snapshot file.
//
// The whole session list is written on every change. At this scale (a personal
// chat history) a full snapshot is simpler and more robust than per-session
// files: there is exactly one file to back up, watch, or delete.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/util"
)

// =============================================================================
// STORE
// =============================================================================

// Store owns the session list and its snapshot file.
//
// RELIABILITY: every mutation persists before returning, via atomic
// write-and-rename, so a crash never leaves a half-written history.
type Store struct {
	mu       sync.Mutex
	path     string
	sessions []*model.ChatSession
}

// NewStore creates a store backed by the snapshot file at path. A missing or
// unreadable snapshot loads as an empty history; losing old chats is better
// than refusing to start.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	s := &Store{path: path}
	s.load()
	return s, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// load reads the snapshot. Corrupt or missing data degrades to empty.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var sessions []*model.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return
	}
	s.sessions = sessions
}

// Reload re-reads the snapshot from disk, replacing the in-memory list. Used
// when the watcher reports an external change.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.load()
}

// persist writes the full snapshot. Callers hold the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

// =============================================================================
// QUERIES
// =============================================================================

// List returns the sessions most recent first. The returned slice is a copy;
// the sessions themselves are shared.
func (s *Store) List() []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns the session with the given ID, or nil.
func (s *Store) Get(id string) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// find locates a session by ID. Callers hold the lock.
func (s *Store) find(id string) *model.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// Count returns the number of stored sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create adds a new session with the given title and persists.
func (s *Store) Create(title string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.NewChatSession(title)
	s.sessions = append(s.sessions, sess)
	if err := s.persist(); err != nil {
		s.sessions = s.sessions[:len(s.sessions)-1]
		return nil, err
	}
	return sess, nil
}

// Remove deletes a session by ID and persists. Removing an absent ID is a
// no-op so a double-delete cannot fail.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// Rename changes a session's title and persists.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return fmt.Errorf("no session %s", id)
	}
	sess.Title = title
	return s.persist()
}

// Touch persists the current state of a session after its messages changed.
// The session must already belong to the store.
func (s *Store) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return fmt.Errorf("no session %s", id)
	}
	return s.persist()
}
