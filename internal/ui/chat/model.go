// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/proxychat-tui/internal/auth"
	"github.com/jeranaias/proxychat-tui/internal/compose"
	"github.com/jeranaias/proxychat-tui/internal/config"
	"github.com/jeranaias/proxychat-tui/internal/engine"
	"github.com/jeranaias/proxychat-tui/internal/history"
	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
	"github.com/jeranaias/proxychat-tui/internal/search"
	"github.com/jeranaias/proxychat-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the whole chat interface: transcript,
// composer input, session sidebar, account linking, and transcript search.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	cfg   *config.Config

	client   *proxy.Client
	store    *history.Store
	engine   *engine.Engine
	flow     *auth.Flow
	composer *compose.Composer
	index    *search.Index
	watcher  *history.Watcher

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	sessions []*model.ChatSession
	activeID string

	accounts []model.Account
	models   []proxy.ModelInfo
	healthy  bool

	// selectedEmail points at an account by email. It may name an account
	// that is no longer linked, so it is re-validated against every fetch.
	selectedEmail string

	searchQuery string
	searchHits  []search.Hit
	showSearch  bool
	showHelp    bool

	// status is a one-line transient notice, cleared on the next keystroke.
	status string

	width  int
	height int
	ready  bool
}

// Options bundles the dependencies the chat model needs.
type Options struct {
	Config  *config.Config
	Client  *proxy.Client
	Store   *history.Store
	Engine  *engine.Engine
	Index   *search.Index
	Watcher *history.Watcher
}

// New creates the chat model. An empty history gets a first session so the
// user always lands in a usable chat.
func New(opts Options) (*Model, error) {
	input := textinput.New()
	input.Placeholder = "Type a message, or /help for commands"
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		theme:    styles.NewTheme(),
		keys:     DefaultKeyMap(),
		cfg:      opts.Config,
		client:   opts.Client,
		store:    opts.Store,
		engine:   opts.Engine,
		flow:     auth.NewFlow(),
		composer: compose.NewComposer(),
		index:    opts.Index,
		watcher:  opts.Watcher,
		input:    input,
		spinner:  sp,
	}

	m.refreshSessions()
	if len(m.sessions) == 0 {
		sess, err := opts.Store.Create("New chat")
		if err != nil {
			return nil, err
		}
		m.sessions = []*model.ChatSession{sess}
	}
	m.activeID = m.sessions[0].ID
	return m, nil
}

// Init starts the background machinery: health polling, model and account
// loading, the history watcher, and the initial index build.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		checkHealthCmd(m.client),
		healthTickCmd(m.cfg.HealthInterval()),
		loadModelsCmd(m.client),
		loadAccountsCmd(m.client),
		rebuildIndexCmd(m.index, m.store),
		textinput.Blink,
		m.spinner.Tick,
	}
	if m.watcher != nil {
		cmds = append(cmds, watchHistoryCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// SESSION HELPERS
// =============================================================================

// refreshSessions re-reads the session list from the store, most recent
// first, and keeps the active selection valid.
func (m *Model) refreshSessions() {
	m.sessions = m.store.List()
	if m.activeID == "" {
		return
	}
	for _, s := range m.sessions {
		if s.ID == m.activeID {
			return
		}
	}
	// Active session disappeared (deleted externally).
	if len(m.sessions) > 0 {
		m.activeID = m.sessions[0].ID
	} else {
		m.activeID = ""
	}
}

// active returns the active session, or nil.
func (m *Model) active() *model.ChatSession {
	return m.store.Get(m.activeID)
}

// activeIndex returns the position of the active session in the sidebar.
func (m *Model) activeIndex() int {
	for i, s := range m.sessions {
		if s.ID == m.activeID {
			return i
		}
	}
	return -1
}

// selectSession switches the active session and rebuilds the transcript.
func (m *Model) selectSession(id string) {
	m.activeID = id
	m.showSearch = false
	m.syncViewport()
}

// cycleSession moves the selection by delta in the sidebar order.
func (m *Model) cycleSession(delta int) {
	if len(m.sessions) == 0 {
		return
	}
	i := m.activeIndex()
	if i < 0 {
		i = 0
	}
	i = (i + delta + len(m.sessions)) % len(m.sessions)
	m.selectSession(m.sessions[i].ID)
}

// busy reports whether the active session has a send in flight.
func (m *Model) busy() bool {
	return m.engine.Busy(m.activeID)
}
