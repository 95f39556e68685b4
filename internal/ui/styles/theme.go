// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the proxychat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER AND STATUS STYLES
	// ==========================================================================

	Header        lipgloss.Style
	HeaderBrand   lipgloss.Style
	StatusBar     lipgloss.Style
	HealthOK      lipgloss.Style
	HealthDown    lipgloss.Style
	ModelBadge    lipgloss.Style
	BusyIndicator lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionMeta         lipgloss.Style
	AccountItem         lipgloss.Style
	AccountLinked       lipgloss.Style
	LinkingStatus       lipgloss.Style
	LinkingFailed       lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	AttachmentChip   lipgloss.Style

	// ==========================================================================
	// SEARCH RESULT STYLES
	// ==========================================================================

	SearchBox   lipgloss.Style
	SearchHit   lipgloss.Style
	SearchTitle lipgloss.Style

	// ==========================================================================
	// GENERAL STYLES
	// ==========================================================================

	ErrorText lipgloss.Style
	MutedText lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header and status
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HealthOK = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.HealthDown = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ModelBadge = lipgloss.NewStyle().
		Foreground(Slate)

	t.BusyIndicator = lipgloss.NewStyle().
		Foreground(Amber)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SessionItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Terracotta).
		Bold(true)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AccountItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.AccountLinked = lipgloss.NewStyle().
		Foreground(Emerald)

	t.LinkingStatus = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.LinkingFailed = lipgloss.NewStyle().
		Foreground(Rose)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		Background(ErrorBubbleBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		BorderLeft(true).
		PaddingLeft(2).
		MarginRight(4)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Terracotta).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Slate).
		Padding(0, 1)

	// Search
	t.SearchBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Terracotta).
		Padding(0, 1)

	t.SearchHit = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SearchTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta)

	// General
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.MutedText = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(Terracotta).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)
}
