// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the proxychat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Terracotta - Primary accent, brand color, selections
var Terracotta = lipgloss.AdaptiveColor{Light: "#C65D3F", Dark: "#D97757"}

// TerracottaDeep - Darker terracotta for backgrounds
var TerracottaDeep = lipgloss.AdaptiveColor{Light: "#A34A30", Dark: "#8A4631"}

// Slate - Secondary accent, user highlights
var Slate = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Emerald - Proxy healthy, linked accounts, success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, proxy down, failed linking
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, linking in progress, in-flight sends
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#262624"}

// SurfaceDim - Sidebar and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F4EF", Dark: "#1F1E1D"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E2DC", Dark: "#3E3D3A"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#ECEAE5"}

// TextSecondary - Labels, session metadata
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A8A49C"}

// TextMuted - Hints, timestamps, placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6F6B63"}

// TextInverse - Text on accent backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1F1E1D"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - terracotta tones, right aligned
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#FBE9E2", Dark: "#4A3227"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#8A4631", Dark: "#F5DDD2"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#D97757", Dark: "#D97757"}

// Assistant message bubble - neutral tones, left aligned
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F5F4EF", Dark: "#30302E"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#E5E2DC"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#D4D0C8", Dark: "#4A4946"}

// Error turns - rose tones inside the transcript
var ErrorBubbleBg = lipgloss.AdaptiveColor{Light: "#FEE2E2", Dark: "#44201F"}
var ErrorBubbleFg = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FECACA"}
