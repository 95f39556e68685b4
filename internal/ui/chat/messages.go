// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the message types that flow through the update loop. All
// asynchronous work (proxy requests, pollers, the history watcher) reports
// back exclusively through these messages; nothing mutates the model from
// another goroutine.
package chat

import (
	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
	"github.com/jeranaias/proxychat-tui/internal/search"
)

// =============================================================================
// HEALTH MESSAGES
// =============================================================================

// HealthTickMsg fires on the health poll cadence.
type HealthTickMsg struct{}

// HealthStatusMsg reports one health probe result.
type HealthStatusMsg struct {
	Healthy bool
}

// =============================================================================
// MODEL AND ACCOUNT MESSAGES
// =============================================================================

// ModelsLoadedMsg carries the model list, or the failure to fetch it.
type ModelsLoadedMsg struct {
	Models []proxy.ModelInfo
	Err    error
}

// AccountsLoadedMsg carries the linked account list. Fetch failures degrade
// to an empty list upstream, so there is no error here.
type AccountsLoadedMsg struct {
	Accounts []model.Account
}

// AccountRemovedMsg reports an unlink attempt.
type AccountRemovedMsg struct {
	Email string
	Err   error
}

// =============================================================================
// ACCOUNT LINKING MESSAGES
// =============================================================================

// Linking messages carry the generation of the attempt that produced them;
// the flow discards any that arrive after their attempt was superseded.

// LinkStartedMsg reports the start request outcome.
type LinkStartedMsg struct {
	Gen   uint64
	Start *proxy.OAuthStart
	Err   error
}

// LinkPollTickMsg fires once per poll interval while linking.
type LinkPollTickMsg struct {
	Gen uint64
}

// LinkPollResultMsg carries one status poll outcome.
type LinkPollResultMsg struct {
	Gen    uint64
	Status *proxy.OAuthStatus
	Err    error
}

// LinkTimeoutMsg fires when an attempt's deadline timer expires.
type LinkTimeoutMsg struct {
	Gen uint64
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// SendSettledMsg carries the completion outcome for an in-flight send.
type SendSettledMsg struct {
	SessionID string
	Resp      *proxy.MessagesResponse
	Err       error
}

// =============================================================================
// HISTORY AND SEARCH MESSAGES
// =============================================================================

// HistoryChangedMsg reports an external change to the history snapshot.
type HistoryChangedMsg struct{}

// IndexRebuiltMsg reports a search index rebuild.
type IndexRebuiltMsg struct {
	Err error
}

// SearchResultsMsg carries the hits for a transcript search.
type SearchResultsMsg struct {
	Query string
	Hits  []search.Hit
	Err   error
}
