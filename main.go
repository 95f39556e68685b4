// proxychat TUI - A terminal chat client for a local completion proxy.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/proxychat-tui/internal/cli"
	"github.com/jeranaias/proxychat-tui/internal/config"
	"github.com/jeranaias/proxychat-tui/internal/engine"
	"github.com/jeranaias/proxychat-tui/internal/history"
	"github.com/jeranaias/proxychat-tui/internal/proxy"
	"github.com/jeranaias/proxychat-tui/internal/search"
	"github.com/jeranaias/proxychat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	var (
		flagPlain    = flag.Bool("plain", false, "line-oriented REPL instead of the full TUI")
		flagModel    = flag.String("model", "", "model to use (overrides config)")
		flagProxyURL = flag.String("proxy-url", "", "base URL of the completion proxy (overrides config)")
		flagVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("proxychat %s (%s)\n", Version, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override config and environment.
	if *flagModel != "" {
		cfg.DefaultModel = *flagModel
	}
	if *flagProxyURL != "" {
		cfg.ProxyURL = *flagProxyURL
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *flagPlain {
		cfg.Plain = true
	}

	if err := config.EnsureConfigDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := proxy.NewClientWithConfig(&proxy.ClientConfig{
		BaseURL:      cfg.ProxyURL,
		Timeout:      cfg.RequestTimeout(),
		DefaultModel: cfg.DefaultModel,
		MaxTokens:    cfg.MaxTokens,
	})

	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(client, store, cfg.DefaultModel, cfg.MaxTokens)

	if cfg.Plain {
		runPlain(cfg, client, store, eng)
		return
	}
	runTUI(cfg, client, store, eng)
}

// runPlain starts the line-oriented REPL.
func runPlain(cfg *config.Config, client *proxy.Client, store *history.Store, eng *engine.Engine) {
	repl, err := cli.NewREPL(cfg, client, store, eng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := repl.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, client *proxy.Client, store *history.Store, eng *engine.Engine) {
	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer index.Close()

	// Live refresh is best effort; the TUI works without a watcher.
	watcher, err := history.NewWatcher(cfg.HistoryPath)
	if err == nil {
		defer watcher.Close()
	} else {
		watcher = nil
	}

	m, err := chat.New(chat.Options{
		Config:  cfg,
		Client:  client,
		Store:   store,
		Engine:  eng,
		Index:   index,
		Watcher: watcher,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running proxychat: %v\n", err)
		os.Exit(1)
	}
}
