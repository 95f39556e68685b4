// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the line-oriented REPL started with --plain.
//
// The REPL covers the same operations as the full TUI over plain stdio, for
// terminals where the alternate screen is unwelcome (screen readers, dumb
// terminals, transcripts piped to a file).
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/proxychat-tui/internal/auth"
	"github.com/jeranaias/proxychat-tui/internal/compose"
	"github.com/jeranaias/proxychat-tui/internal/config"
	"github.com/jeranaias/proxychat-tui/internal/engine"
	"github.com/jeranaias/proxychat-tui/internal/history"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
	"github.com/jeranaias/proxychat-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Terracotta).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	replyStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides input history and line editing for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(dir, "repl_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the plain-mode chat loop.
type REPL struct {
	cfg      *config.Config
	client   *proxy.Client
	store    *history.Store
	engine   *engine.Engine
	composer *compose.Composer

	sessionID string
	reader    *lineReader
}

// NewREPL creates the plain-mode loop around an existing store and engine.
func NewREPL(cfg *config.Config, client *proxy.Client, store *history.Store, eng *engine.Engine) (*REPL, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("--plain needs an interactive terminal")
	}

	sess, err := store.Create("Plain session")
	if err != nil {
		return nil, err
	}

	return &REPL{
		cfg:       cfg,
		client:    client,
		store:     store,
		engine:    eng,
		composer:  compose.NewComposer(),
		sessionID: sess.ID,
	}, nil
}

// Run drives the loop until /quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	r.reader = newLineReader()
	defer r.reader.close()

	fmt.Println(infoStyle.Render("proxychat (plain mode) · model " + r.engine.Model() + " · /help for commands"))

	for {
		input, err := r.reader.read(promptStyle.Render("> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// EOF (Ctrl+D) ends the session.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := r.runCommand(ctx, input); quit {
				return nil
			}
			continue
		}

		r.send(ctx, input)
	}
}

// send runs a full synchronous send cycle and prints the assistant turn.
func (r *REPL) send(ctx context.Context, text string) {
	msg, err := r.composer.Build(text)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout())
	defer cancel()

	turn, err := r.engine.Send(sendCtx, r.sessionID, msg)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}

	if strings.HasPrefix(turn.DisplayText, "Error: ") {
		fmt.Println(errorStyle.Render(turn.DisplayText))
		return
	}
	fmt.Println(replyStyle.Render(turn.DisplayText))
}

// =============================================================================
// COMMANDS
// =============================================================================

// runCommand handles one slash command. Returns true to exit the loop.
func (r *REPL) runCommand(ctx context.Context, input string) bool {
	parts := strings.SplitN(strings.TrimPrefix(input, "/"), " ", 2)
	name := strings.ToLower(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	switch name {
	case "quit", "q", "exit":
		return true

	case "help", "h":
		r.printHelp()

	case "new":
		title := arg
		if title == "" {
			title = "Plain session"
		}
		sess, err := r.store.Create(title)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return false
		}
		r.sessionID = sess.ID
		fmt.Println(infoStyle.Render("Started " + title))

	case "model":
		if arg == "" {
			fmt.Println(infoStyle.Render("Current model: " + r.engine.Model()))
			r.printModels(ctx)
			return false
		}
		r.engine.SetModel(arg)
		fmt.Println(infoStyle.Render("Model set to " + arg))

	case "attach":
		if arg == "" {
			fmt.Println(errorStyle.Render("Usage: /attach <image path>"))
			return false
		}
		att, err := r.composer.Attach(arg)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return false
		}
		fmt.Println(infoStyle.Render("Attached " + att.Name + " (sent with your next message)"))

	case "detach":
		r.composer.DetachLast()
		fmt.Println(infoStyle.Render("Last attachment removed"))

	case "accounts":
		r.printAccounts(ctx)

	case "link":
		r.link(ctx)

	case "unlink":
		if arg == "" {
			fmt.Println(errorStyle.Render("Usage: /unlink <email>"))
			return false
		}
		if err := r.client.RemoveAccount(ctx, arg); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return false
		}
		fmt.Println(infoStyle.Render("Unlinked " + arg))

	default:
		fmt.Println(errorStyle.Render("Unknown command: /" + name))
	}
	return false
}

func (r *REPL) printHelp() {
	help := `  /new [title]      start a new chat
  /model [id]       show or switch the model
  /attach <path>    stage an image for the next message
  /detach           remove the last staged image
  /accounts         list linked accounts
  /link             link an account in the browser
  /unlink <email>   remove a linked account
  /quit             exit`
	fmt.Println(infoStyle.Render(help))
}

func (r *REPL) printModels(ctx context.Context) {
	models, err := r.client.ListModels(ctx)
	if err != nil {
		fmt.Println(errorStyle.Render("Cannot list models: " + err.Error()))
		return
	}
	for _, mi := range models {
		fmt.Println(infoStyle.Render("  " + mi.ID))
	}
}

func (r *REPL) printAccounts(ctx context.Context) {
	accounts := r.client.ListAccounts(ctx)
	if len(accounts) == 0 {
		fmt.Println(infoStyle.Render("No linked accounts"))
		return
	}
	for _, acct := range accounts {
		mark := "○"
		if acct.HasCredential() {
			mark = "●"
		}
		fmt.Println(infoStyle.Render("  " + mark + " " + acct.Email))
	}
}

// link runs the account-linking handshake synchronously: open the browser,
// poll once a second, settle within the deadline.
func (r *REPL) link(ctx context.Context) {
	flow := auth.NewFlow()
	gen := flow.Begin(time.Now())

	start, err := r.client.StartOAuth(ctx)
	if err != nil {
		flow.StartFailed(gen, err.Error())
		fmt.Println(errorStyle.Render("Linking failed: " + flow.FailReason()))
		return
	}
	flow.StartSucceeded(gen, start.State)

	if err := auth.OpenBrowser(start.URL); err != nil {
		fmt.Println(infoStyle.Render("Open this URL to authorize: " + start.URL))
	} else {
		fmt.Println(infoStyle.Render("Browser opened; waiting for authorization..."))
	}

	ticker := time.NewTicker(auth.PollInterval)
	defer ticker.Stop()

	for !flow.State().Terminal() {
		select {
		case <-ctx.Done():
			flow.Cancel()
			return
		case <-ticker.C:
		}

		status, pollErr := r.client.OAuthStatus(ctx, flow.StateToken())
		flow.HandlePoll(gen, status, pollErr, time.Now())
	}

	switch flow.State() {
	case auth.StateCompleted:
		fmt.Println(infoStyle.Render("Account linked"))
		r.printAccounts(ctx)
	case auth.StateFailed:
		fmt.Println(errorStyle.Render("Linking failed: " + flow.FailReason()))
	case auth.StateTimedOut:
		fmt.Println(errorStyle.Render("Linking timed out"))
	}
}
