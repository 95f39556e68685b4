// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine runs the send/reply cycle of a conversation.
//
// A send is two-phase. Begin appends the user turn, persists it, and marks
// the session in flight; the caller then performs the completion request
// however it likes (a bubbletea command, a blocking call) and feeds the
// outcome to Complete, which appends exactly one assistant turn and clears
// the in-flight mark. Failures become visible assistant turns rather than
// transient status text, so the error stays in the transcript the user
// scrolls back through.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/proxychat-tui/internal/history"
	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
)

// ErrBusy is returned when a send is attempted while another is in flight.
var ErrBusy = errors.New("a request is already in flight")

// completionClient is the slice of the proxy client the engine needs.
type completionClient interface {
	CreateMessage(ctx context.Context, modelID string, messages []proxy.APIMessage, maxTokens int) (*proxy.MessagesResponse, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives conversations stored in a history store. It tracks at most
// one in-flight request per session.
//
// Engine is not safe for concurrent use; it lives inside a single-threaded
// event loop. The store it persists through has its own locking.
type Engine struct {
	client    completionClient
	store     *history.Store
	modelID   string
	maxTokens int

	inFlight map[string]bool
}

// New creates an engine sending through client and persisting through store.
func New(client completionClient, store *history.Store, modelID string, maxTokens int) *Engine {
	return &Engine{
		client:    client,
		store:     store,
		modelID:   modelID,
		maxTokens: maxTokens,
		inFlight:  make(map[string]bool),
	}
}

// Model returns the model used for new sends.
func (e *Engine) Model() string { return e.modelID }

// SetModel switches the model for subsequent sends. In-flight requests keep
// the model they were sent with.
func (e *Engine) SetModel(modelID string) { e.modelID = modelID }

// Busy reports whether the session has a request in flight.
func (e *Engine) Busy(sessionID string) bool {
	return e.inFlight[sessionID]
}

// =============================================================================
// TWO-PHASE SEND
// =============================================================================

// Begin appends the user turn, persists it, and marks the session in flight.
// It returns the full history in wire form, ready for the completion request.
//
// The user turn is committed before the request goes out. If the program
// dies mid-request the question survives in the history, answerless, which
// is what actually happened.
func (e *Engine) Begin(sessionID string, msg *model.Message) ([]proxy.APIMessage, error) {
	if e.inFlight[sessionID] {
		return nil, ErrBusy
	}

	sess := e.store.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("no session %s", sessionID)
	}

	sess.Append(msg)
	if err := e.store.Touch(sessionID); err != nil {
		sess.Messages = sess.Messages[:len(sess.Messages)-1]
		return nil, err
	}

	e.inFlight[sessionID] = true
	return proxy.ToAPIMessages(sess.Messages), nil
}

// Complete settles an in-flight send with either a reply or an error. Exactly
// one assistant turn is appended: the cleaned reply text on success, an
// "Error: ..." turn otherwise. The in-flight mark is cleared on every path.
func (e *Engine) Complete(sessionID string, resp *proxy.MessagesResponse, sendErr error) (*model.Message, error) {
	delete(e.inFlight, sessionID)

	sess := e.store.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("no session %s", sessionID)
	}

	var turn *model.Message
	if sendErr != nil {
		turn = model.NewAssistantMessage("Error: " + sendErr.Error())
	} else {
		turn = model.NewAssistantMessage(CleanReply(resp.TextBlocks()))
	}

	sess.Append(turn)
	if err := e.store.Touch(sessionID); err != nil {
		return turn, err
	}
	return turn, nil
}

// Abort clears the in-flight mark without appending a turn. Used when the
// session itself goes away mid-request.
func (e *Engine) Abort(sessionID string) {
	delete(e.inFlight, sessionID)
}

// =============================================================================
// BLOCKING SEND
// =============================================================================

// Send runs a full send cycle synchronously. The line-oriented REPL uses
// this; the TUI splits the phases across its event loop instead.
func (e *Engine) Send(ctx context.Context, sessionID string, msg *model.Message) (*model.Message, error) {
	apiMsgs, err := e.Begin(sessionID, msg)
	if err != nil {
		return nil, err
	}

	resp, sendErr := e.client.CreateMessage(ctx, e.modelID, apiMsgs, e.maxTokens)
	return e.Complete(sessionID, resp, sendErr)
}
