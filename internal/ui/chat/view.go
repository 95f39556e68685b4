// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/proxychat-tui/internal/auth"
	"github.com/jeranaias/proxychat-tui/internal/model"
	"github.com/jeranaias/proxychat-tui/internal/util"
)

const (
	sidebarWidth  = 30
	chromeHeight  = 4 // header + input + status bar
	maxSidebarRow = 28
)

// =============================================================================
// LAYOUT
// =============================================================================

// layout recomputes component dimensions after a resize.
func (m *Model) layout() {
	transcriptWidth := m.width - sidebarWidth
	if transcriptWidth < 20 {
		transcriptWidth = m.width
	}
	transcriptHeight := m.height - chromeHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	m.viewport.Width = transcriptWidth
	m.viewport.Height = transcriptHeight
	m.input.Width = m.width - 6
}

// syncViewport rebuilds the transcript content and scrolls to the bottom.
func (m *Model) syncViewport() {
	sess := m.active()
	if sess == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderTranscript(sess))
	m.viewport.GotoBottom()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole interface.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var main string
	switch {
	case m.showHelp:
		main = m.renderHelp()
	case m.showSearch:
		main = m.renderSearch()
	default:
		main = m.viewport.View()
	}

	if m.width >= sidebarWidth+40 {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		main,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func (m *Model) renderHeader() string {
	health := m.theme.HealthDown.Render("● proxy offline")
	if m.healthy {
		health = m.theme.HealthOK.Render("● proxy online")
	}

	title := m.theme.HeaderBrand.Render("proxychat")
	modelBadge := m.theme.ModelBadge.Render(m.engine.Model())

	left := title + "  " + modelBadge
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(health) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + health)
}

func (m *Model) renderStatusBar() string {
	if m.status != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.status)
	}

	var parts []string
	if m.busy() {
		parts = append(parts, m.theme.BusyIndicator.Render(m.spinner.View()+"waiting for reply"))
	}
	if n := len(m.composer.Attachments()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s staged", n, util.Pluralize(n, "attachment", "attachments")))
	}
	if state := m.flow.State(); state == auth.StateStarting || state == auth.StateAwaitingUser {
		parts = append(parts, m.theme.LinkingStatus.Render("linking account..."))
	}
	parts = append(parts, m.theme.HelpDesc.Render("F1 help"))

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  ·  "))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("CHATS"))
	b.WriteString("\n")
	for _, sess := range m.sessions {
		row := util.TruncateWidth(sess.Title, maxSidebarRow-2)
		if sess.ID == m.activeID {
			b.WriteString(m.theme.SessionItemSelected.Render("▸ " + row))
		} else {
			b.WriteString(m.theme.SessionItem.Render("  " + row))
		}
		b.WriteString("\n")
		meta := fmt.Sprintf("  %d %s", sess.MessageCount(), util.Pluralize(sess.MessageCount(), "message", "messages"))
		b.WriteString(m.theme.SessionMeta.Render(meta))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.SidebarTitle.Render("ACCOUNTS"))
	b.WriteString("\n")
	if len(m.accounts) == 0 {
		b.WriteString(m.theme.MutedText.Render("  none linked"))
		b.WriteString("\n")
	}
	for _, acct := range m.accounts {
		mark := m.theme.AccountItem.Render("○ ")
		if acct.HasCredential() {
			mark = m.theme.AccountLinked.Render("● ")
		}
		email := util.TruncateWidth(acct.Email, maxSidebarRow-4)
		if acct.Email == m.selectedEmail {
			b.WriteString(mark + m.theme.SessionItemSelected.Render(email))
		} else {
			b.WriteString(mark + m.theme.AccountItem.Render(email))
		}
		b.WriteString("\n")
	}

	height := m.height - chromeHeight
	return m.theme.Sidebar.Width(sidebarWidth - 2).Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m *Model) renderTranscript(sess *model.ChatSession) string {
	if sess.IsEmpty() {
		return m.theme.MutedText.Render("\n  Start the conversation, or /help for commands.")
	}

	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var b strings.Builder
	for _, msg := range sess.Messages {
		b.WriteString(m.renderMessage(msg, bubbleWidth))
		b.WriteString("\n")
	}
	if m.engine.Busy(sess.ID) {
		b.WriteString(m.theme.BusyIndicator.Render(m.spinner.View() + "thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg *model.Message, maxWidth int) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())

	body := msg.DisplayText
	if n := msg.ImageCount(); n > 0 && msg.TextContent() != "" {
		body = fmt.Sprintf("[%d %s]\n%s", n, util.Pluralize(n, "image", "images"), body)
	}

	style := m.theme.AssistantBubble
	switch {
	case msg.Role == model.RoleUser:
		style = m.theme.UserBubble
	case strings.HasPrefix(msg.DisplayText, "Error: "):
		style = m.theme.ErrorBubble
	}

	return label + "\n" + style.MaxWidth(maxWidth).Render(body) + "\n"
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m *Model) renderInput() string {
	var chips string
	for _, att := range m.composer.Attachments() {
		chips += m.theme.AttachmentChip.Render("🖼 "+att.Name) + " "
	}
	line := m.theme.InputPrompt.Render("> ") + m.input.View()
	if chips != "" {
		line = chips + "\n" + line
	}
	return m.theme.InputContainer.Width(m.width).Render(line)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.theme.SearchTitle.Render(fmt.Sprintf("Search: %q", m.searchQuery)))
	b.WriteString("\n\n")

	if len(m.searchHits) == 0 {
		b.WriteString(m.theme.MutedText.Render("No matches."))
	}
	for _, hit := range m.searchHits {
		b.WriteString(m.theme.SearchTitle.Render(hit.SessionTitle))
		b.WriteString(m.theme.MutedText.Render(" · " + hit.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.SearchHit.Render("  " + util.TruncateWidth(util.FirstLine(hit.Body), m.viewport.Width-4)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("Esc to close"))

	return m.theme.SearchBox.Width(m.viewport.Width - 2).Height(m.viewport.Height - 2).Render(b.String())
}

func (m *Model) renderHelp() string {
	rows := []struct{ cmd, desc string }{
		{"/new [title]", "start a new chat"},
		{"/rename <title>", "rename the current chat"},
		{"/delete", "delete the current chat"},
		{"/attach <path>", "stage an image for the next message"},
		{"/detach", "remove the last staged image"},
		{"/model [id]", "show or switch the model"},
		{"/link", "link an account in the browser"},
		{"/account [email]", "show or select an account"},
		{"/unlink <email>", "remove a linked account"},
		{"/search <query>", "search all transcripts"},
		{"/quit", "exit"},
	}

	var b strings.Builder
	b.WriteString(m.theme.SearchTitle.Render("Commands"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(m.theme.HelpKey.Render(util.PadRight(r.cmd, 18)))
		b.WriteString(m.theme.HelpDesc.Render(r.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString(m.theme.HelpKey.Render(util.PadRight(binding.Help().Key, 18)))
			b.WriteString(m.theme.HelpDesc.Render(binding.Help().Desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("Esc to close"))

	return m.theme.SearchBox.Width(m.viewport.Width - 2).Height(m.viewport.Height - 2).Render(b.String())
}
