// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/jeranaias/proxychat-tui/internal/auth"
	"github.com/jeranaias/proxychat-tui/internal/engine"
	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/util"
)

// Update is the single state transition function. Every event, whether a
// keystroke or a settled background command, passes through here on one
// goroutine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ------------------------------------------------------------------ health

	case HealthTickMsg:
		return m, tea.Batch(checkHealthCmd(m.client), healthTickCmd(m.cfg.HealthInterval()))

	case HealthStatusMsg:
		m.healthy = msg.Healthy
		return m, nil

	// -------------------------------------------------------- models, accounts

	case ModelsLoadedMsg:
		if msg.Err == nil {
			m.models = msg.Models
		}
		return m, nil

	case AccountsLoadedMsg:
		m.accounts = msg.Accounts
		if _, ok := model.FindAccount(m.accounts, m.selectedEmail); !ok {
			m.selectedEmail = ""
		}
		return m, nil

	case AccountRemovedMsg:
		if msg.Err != nil {
			m.status = "Unlink failed: " + msg.Err.Error()
		} else {
			m.status = "Unlinked " + msg.Email
		}
		return m, loadAccountsCmd(m.client)

	// ---------------------------------------------------------------- linking

	case LinkStartedMsg:
		return m.handleLinkStarted(msg)

	case LinkPollTickMsg:
		if m.flow.Current(msg.Gen) && m.flow.State() == auth.StateAwaitingUser {
			return m, linkPollCmd(m.client, msg.Gen, m.flow.StateToken())
		}
		return m, nil

	case LinkPollResultMsg:
		return m.handleLinkPoll(msg)

	case LinkTimeoutMsg:
		if m.flow.HandleTimeout(msg.Gen) {
			m.status = "Account linking timed out"
			m.flow.Reset()
		}
		return m, nil

	// ------------------------------------------------------------ conversation

	case SendSettledMsg:
		return m.handleSendSettled(msg)

	// --------------------------------------------------------- history, search

	case HistoryChangedMsg:
		m.store.Reload()
		m.refreshSessions()
		m.syncViewport()
		return m, tea.Batch(rebuildIndexCmd(m.index, m.store), watchHistoryCmd(m.watcher))

	case IndexRebuiltMsg:
		if msg.Err != nil {
			m.status = "Search index rebuild failed: " + msg.Err.Error()
		}
		return m, nil

	case SearchResultsMsg:
		if msg.Err != nil {
			m.status = "Search failed: " + msg.Err.Error()
			return m, nil
		}
		m.searchQuery = msg.Query
		m.searchHits = msg.Hits
		m.showSearch = true
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A fresh keystroke clears the transient notice.
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.showSearch:
			m.showSearch = false
		case m.showHelp:
			m.showHelp = false
		case !m.flow.State().Terminal() && m.flow.State() != auth.StateIdle:
			m.flow.Cancel()
			m.status = "Account linking cancelled"
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		return m.newChat("")

	case key.Matches(msg, m.keys.PrevSession):
		m.cycleSession(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextSession):
		m.cycleSession(1)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMIT AND SLASH COMMANDS
// =============================================================================

// submit handles Enter: a slash command or an outgoing message.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	if name, arg, ok := parseCommand(text); ok {
		m.input.SetValue("")
		return m.runCommand(name, arg)
	}

	if text == "" && len(m.composer.Attachments()) == 0 {
		return m, nil
	}
	if m.busy() {
		m.status = "Still waiting for the previous reply"
		return m, nil
	}

	msg, err := m.composer.Build(text)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	apiMsgs, err := m.engine.Begin(m.activeID, msg)
	if err != nil {
		if errors.Is(err, engine.ErrBusy) {
			m.status = "Still waiting for the previous reply"
		} else {
			m.status = err.Error()
		}
		return m, nil
	}

	m.input.SetValue("")
	m.refreshSessions()
	m.syncViewport()
	return m, sendCmd(m.client, m.activeID, m.engine.Model(), apiMsgs, m.cfg.MaxTokens, m.cfg.RequestTimeout())
}

// parseCommand splits a "/name arg" input. Returns ok=false for ordinary
// message text.
func parseCommand(text string) (name, arg string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(text, "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.SplitN(rest, " ", 2)
	name = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return name, arg, true
}

// runCommand dispatches a slash command.
func (m *Model) runCommand(name, arg string) (tea.Model, tea.Cmd) {
	switch name {
	case "new":
		return m.newChat(arg)

	case "rename":
		if arg == "" {
			m.status = "Usage: /rename <title>"
			return m, nil
		}
		if err := m.store.Rename(m.activeID, arg); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.refreshSessions()
		return m, nil

	case "delete":
		return m.deleteChat()

	case "attach":
		if arg == "" {
			m.status = "Usage: /attach <image path>"
			return m, nil
		}
		att, err := m.composer.Attach(arg)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "Attached " + att.Name
		return m, nil

	case "detach":
		m.composer.DetachLast()
		return m, nil

	case "model":
		if arg == "" {
			m.status = "Current model: " + m.engine.Model()
			return m, nil
		}
		m.engine.SetModel(arg)
		m.status = "Model set to " + arg
		return m, nil

	case "link":
		gen := m.flow.Begin(time.Now())
		m.status = "Starting account linking..."
		return m, startLinkCmd(m.client, gen)

	case "account":
		if arg == "" {
			if m.selectedEmail == "" {
				m.status = "No account selected"
			} else {
				m.status = "Selected account: " + m.selectedEmail
			}
			return m, nil
		}
		if _, ok := model.FindAccount(m.accounts, arg); !ok {
			m.status = "No linked account " + arg
			return m, nil
		}
		m.selectedEmail = arg
		m.status = "Selected account " + arg
		return m, nil

	case "unlink":
		if arg == "" {
			m.status = "Usage: /unlink <email>"
			return m, nil
		}
		return m, removeAccountCmd(m.client, arg)

	case "search":
		if arg == "" {
			m.status = "Usage: /search <query>"
			return m, nil
		}
		return m, searchCmd(m.index, arg)

	case "help":
		m.showHelp = true
		return m, nil

	case "quit":
		return m, tea.Quit

	default:
		m.status = "Unknown command: /" + name
		return m, nil
	}
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

// newChat creates and selects a fresh session.
func (m *Model) newChat(title string) (tea.Model, tea.Cmd) {
	if title == "" {
		title = "New chat"
	}
	sess, err := m.store.Create(util.TruncateRunes(title, 60))
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.refreshSessions()
	m.selectSession(sess.ID)
	return m, nil
}

// deleteChat removes the active session. The in-flight mark, if any, is
// dropped with it; a reply for a deleted session has nowhere to land.
func (m *Model) deleteChat() (tea.Model, tea.Cmd) {
	if m.activeID == "" {
		return m, nil
	}
	m.engine.Abort(m.activeID)
	if err := m.store.Remove(m.activeID); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.refreshSessions()
	if len(m.sessions) == 0 {
		return m.newChat("")
	}
	m.selectSession(m.sessions[0].ID)
	return m, rebuildIndexCmd(m.index, m.store)
}

// handleLinkStarted settles the start phase of a linking attempt.
func (m *Model) handleLinkStarted(msg LinkStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.flow.StartFailed(msg.Gen, msg.Err.Error()) {
			m.status = "Linking failed: " + m.flow.FailReason()
			m.flow.Reset()
		}
		return m, nil
	}
	if !m.flow.StartSucceeded(msg.Gen, msg.Start.State) {
		return m, nil
	}
	m.status = "Browser opened; waiting for authorization..."
	return m, tea.Batch(linkPollTickCmd(msg.Gen), linkTimeoutCmd(msg.Gen))
}

// handleLinkPoll feeds one poll outcome into the flow.
func (m *Model) handleLinkPoll(msg LinkPollResultMsg) (tea.Model, tea.Cmd) {
	switch m.flow.HandlePoll(msg.Gen, msg.Status, msg.Err, time.Now()) {
	case auth.PollContinue:
		return m, linkPollTickCmd(msg.Gen)

	case auth.PollSettled:
		var cmd tea.Cmd
		switch m.flow.State() {
		case auth.StateCompleted:
			m.status = "Account linked"
			cmd = loadAccountsCmd(m.client)
		case auth.StateFailed:
			m.status = "Linking failed: " + m.flow.FailReason()
		case auth.StateTimedOut:
			m.status = "Account linking timed out"
		}
		m.flow.Reset()
		return m, cmd
	}
	return m, nil
}

// handleSendSettled appends the assistant turn for a settled send.
func (m *Model) handleSendSettled(msg SendSettledMsg) (tea.Model, tea.Cmd) {
	if m.store.Get(msg.SessionID) == nil {
		// Session was deleted while the request was in flight.
		m.engine.Abort(msg.SessionID)
		return m, nil
	}

	if _, err := m.engine.Complete(msg.SessionID, msg.Resp, msg.Err); err != nil {
		m.status = fmt.Sprintf("Failed to save reply: %v", err)
	}
	m.refreshSessions()
	if msg.SessionID == m.activeID {
		m.syncViewport()
	}
	return m, rebuildIndexCmd(m.index, m.store)
}
