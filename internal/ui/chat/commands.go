// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/proxychat-tui/internal/auth"
	"github.com/jeranaias/proxychat-tui/internal/history"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
	"github.com/jeranaias/proxychat-tui/internal/search"
)

// =============================================================================
// HEALTH COMMANDS
// =============================================================================

// checkHealthCmd probes the proxy health endpoint once.
func checkHealthCmd(client *proxy.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthStatusMsg{Healthy: client.Health(ctx)}
	}
}

// healthTickCmd schedules the next health probe.
func healthTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return HealthTickMsg{}
	})
}

// =============================================================================
// MODEL AND ACCOUNT COMMANDS
// =============================================================================

// loadModelsCmd fetches the model list.
func loadModelsCmd(client *proxy.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		models, err := client.ListModels(ctx)
		return ModelsLoadedMsg{Models: models, Err: err}
	}
}

// loadAccountsCmd fetches the linked account list.
func loadAccountsCmd(client *proxy.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return AccountsLoadedMsg{Accounts: client.ListAccounts(ctx)}
	}
}

// removeAccountCmd unlinks an account by email.
func removeAccountCmd(client *proxy.Client, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return AccountRemovedMsg{Email: email, Err: client.RemoveAccount(ctx, email)}
	}
}

// =============================================================================
// ACCOUNT LINKING COMMANDS
// =============================================================================

// startLinkCmd begins a linking handshake and opens the browser on success.
func startLinkCmd(client *proxy.Client, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		start, err := client.StartOAuth(ctx)
		if err != nil {
			return LinkStartedMsg{Gen: gen, Err: err}
		}

		// A browser that fails to open is not fatal; the attempt keeps
		// polling and the user can open the URL by hand.
		_ = auth.OpenBrowser(start.URL)
		return LinkStartedMsg{Gen: gen, Start: start}
	}
}

// linkPollTickCmd schedules the next status poll for an attempt.
func linkPollTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(auth.PollInterval, func(time.Time) tea.Msg {
		return LinkPollTickMsg{Gen: gen}
	})
}

// linkPollCmd performs one status poll.
func linkPollCmd(client *proxy.Client, gen uint64, stateToken string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		status, err := client.OAuthStatus(ctx, stateToken)
		return LinkPollResultMsg{Gen: gen, Status: status, Err: err}
	}
}

// linkTimeoutCmd arms the attempt's deadline timer.
func linkTimeoutCmd(gen uint64) tea.Cmd {
	return tea.Tick(auth.Timeout, func(time.Time) tea.Msg {
		return LinkTimeoutMsg{Gen: gen}
	})
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

// sendCmd performs the completion request for an in-flight send.
func sendCmd(client *proxy.Client, sessionID, modelID string, messages []proxy.APIMessage, maxTokens int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.CreateMessage(ctx, modelID, messages, maxTokens)
		return SendSettledMsg{SessionID: sessionID, Resp: resp, Err: err}
	}
}

// =============================================================================
// HISTORY AND SEARCH COMMANDS
// =============================================================================

// watchHistoryCmd blocks until the watcher reports an external snapshot
// change. Reissued after every delivery.
func watchHistoryCmd(w *history.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return HistoryChangedMsg{}
	}
}

// rebuildIndexCmd rebuilds the search index from the current history.
func rebuildIndexCmd(idx *search.Index, store *history.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return IndexRebuiltMsg{Err: idx.Rebuild(ctx, store.List())}
	}
}

// searchCmd runs a transcript search.
func searchCmd(idx *search.Index, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hits, err := idx.Search(ctx, query, 30)
		return SearchResultsMsg{Query: query, Hits: hits, Err: err}
	}
}
