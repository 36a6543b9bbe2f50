// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
)

// Theme defines the visual style for the portal screens.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Disabled lipgloss.Style
	Box      lipgloss.Style
	Error    lipgloss.Style

	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	Primary lipgloss.Color
	Border  lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#7c3aed"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	Cursor: lipgloss.NewStyle().
		Background(lipgloss.Color("#7c3aed")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Disabled: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#525252")).
		Strikethrough(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),

	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
}

// Notice renders a notification in the style of its kind.
func (t Theme) Notice(n portal.Notification) string {
	switch n.Kind {
	case portal.KindSuccess:
		return t.Success.Render("✓ " + n.Message)
	case portal.KindWarning:
		return t.Warning.Render("! " + n.Message)
	case portal.KindError:
		return t.Danger.Render("✗ " + n.Message)
	default:
		return t.Info.Render(n.Message)
	}
}

// Status colours an application status.
func (t Theme) Status(status string) string {
	switch status {
	case models.StatusApproved:
		return t.Info.Render(status)
	case models.StatusAccepted:
		return t.Success.Render(status)
	case models.StatusRejected:
		return t.Danger.Render(status)
	default:
		return t.Warning.Render(status)
	}
}
