// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth drives the account-linking handshake against the local proxy.
//
// The heavy lifting (authorization URL, state token, credential storage) lives
// in the proxy; this package owns only the client-side lifecycle: kicking off
// the handshake, polling its status, and settling on exactly one terminal
// outcome per attempt.
package auth

import (
	"time"

	"github.com/jeranaias/proxychat-tui/internal/proxy"
)

// Polling cadence and the hard ceiling on a single linking attempt.
const (
	PollInterval = 1 * time.Second
	Timeout      = 120 * time.Second
)

// =============================================================================
// FLOW STATES
// =============================================================================

// State is the linking flow's position in its lifecycle.
type State int

const (
	// StateIdle means no attempt is running.
	StateIdle State = iota

	// StateStarting means the start request is in flight.
	StateStarting

	// StateAwaitingUser means the browser is open and we are polling.
	StateAwaitingUser

	// StateCompleted is terminal: the account was linked.
	StateCompleted

	// StateFailed is terminal: the proxy reported a definitive failure.
	StateFailed

	// StateTimedOut is terminal: the attempt exceeded the ceiling.
	StateTimedOut
)

// String returns a short label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateAwaitingUser:
		return "awaiting user"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a settled outcome.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// =============================================================================
// FLOW
// =============================================================================

// Flow is the client-side linking state machine. Each attempt carries a
// generation number; timer and poll events stamped with an older generation
// are ignored, so a cancelled or settled attempt cannot be revived by its
// leftover ticks.
//
// Flow is not safe for concurrent use. It is designed to live inside a
// single-threaded event loop that feeds it one event at a time.
type Flow struct {
	state State
	gen   uint64

	// attempt details, valid while state is Starting or AwaitingUser
	stateToken string
	startedAt  time.Time

	// outcome, valid in terminal states
	failReason string
}

// NewFlow returns a flow in the idle state.
func NewFlow() *Flow {
	return &Flow{state: StateIdle}
}

// State returns the current lifecycle state.
func (f *Flow) State() State { return f.state }

// Generation returns the current attempt's generation number. Events produced
// for this attempt must carry it back so stale ones can be recognized.
func (f *Flow) Generation() uint64 { return f.gen }

// StateToken returns the proxy's state token for the running attempt.
func (f *Flow) StateToken() string { return f.stateToken }

// FailReason returns the failure message for StateFailed.
func (f *Flow) FailReason() string { return f.failReason }

// Elapsed returns how long the current attempt has been running.
func (f *Flow) Elapsed(now time.Time) time.Duration {
	if f.startedAt.IsZero() {
		return 0
	}
	return now.Sub(f.startedAt)
}

// Current reports whether an event generation belongs to the running attempt.
// Events from earlier attempts are inert.
func (f *Flow) Current(gen uint64) bool {
	return gen == f.gen && !f.state.Terminal() && f.state != StateIdle
}

// Begin starts a new attempt and returns its generation. Any previous attempt
// is implicitly abandoned: its events no longer match the generation.
func (f *Flow) Begin(now time.Time) uint64 {
	f.gen++
	f.state = StateStarting
	f.stateToken = ""
	f.failReason = ""
	f.startedAt = now
	return f.gen
}

// StartSucceeded records the proxy's start response and moves to polling.
func (f *Flow) StartSucceeded(gen uint64, stateToken string) bool {
	if gen != f.gen || f.state != StateStarting {
		return false
	}
	f.stateToken = stateToken
	f.state = StateAwaitingUser
	return true
}

// StartFailed settles the attempt when the start request itself fails.
func (f *Flow) StartFailed(gen uint64, reason string) bool {
	if gen != f.gen || f.state != StateStarting {
		return false
	}
	f.state = StateFailed
	f.failReason = reason
	return true
}

// PollResult is what HandlePoll tells the caller to do next.
type PollResult int

const (
	// PollIgnore: stale or out-of-state event, do nothing.
	PollIgnore PollResult = iota

	// PollContinue: still pending, schedule the next poll.
	PollContinue

	// PollSettled: the flow reached a terminal state.
	PollSettled
)

// HandlePoll feeds one status poll outcome into the flow.
//
// A transport error during polling is treated as a pending result. The user
// may be mid-consent in the browser; one dropped poll must not kill the
// attempt. The timeout ceiling still bounds how long we keep trying.
func (f *Flow) HandlePoll(gen uint64, status *proxy.OAuthStatus, err error, now time.Time) PollResult {
	if gen != f.gen || f.state != StateAwaitingUser {
		return PollIgnore
	}

	if f.Elapsed(now) >= Timeout {
		f.state = StateTimedOut
		return PollSettled
	}

	if err != nil {
		return PollContinue
	}

	switch status.Status {
	case proxy.OAuthCompleted:
		f.state = StateCompleted
		return PollSettled
	case proxy.OAuthFailed:
		f.state = StateFailed
		f.failReason = status.Error
		if f.failReason == "" {
			f.failReason = "authentication failed"
		}
		return PollSettled
	default:
		return PollContinue
	}
}

// HandleTimeout settles the attempt when its deadline timer fires. Stale
// timers from earlier attempts are ignored.
func (f *Flow) HandleTimeout(gen uint64) bool {
	if gen != f.gen || f.state.Terminal() || f.state == StateIdle {
		return false
	}
	f.state = StateTimedOut
	return true
}

// Cancel abandons the running attempt and returns to idle. Safe to call in
// any state.
func (f *Flow) Cancel() {
	if f.state == StateIdle {
		return
	}
	f.gen++
	f.state = StateIdle
	f.stateToken = ""
	f.failReason = ""
	f.startedAt = time.Time{}
}

// Reset returns a settled flow to idle so a new attempt can begin cleanly.
func (f *Flow) Reset() {
	if !f.state.Terminal() {
		return
	}
	f.state = StateIdle
	f.stateToken = ""
	f.failReason = ""
	f.startedAt = time.Time{}
}
