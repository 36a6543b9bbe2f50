// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/univen/housing-portal/portal"
)

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case ScreenApplications:
		body = m.renderApplications()
	default:
		body = m.renderSelection()
	}

	parts := []string{m.renderHeader(), body}
	if n, ok := m.notifier.Current(); ok {
		parts = append(parts, "", m.theme.Notice(n))
	}
	parts = append(parts, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Student Housing Portal")
	if m.student != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, m.theme.Subtitle.Render("  "+m.student))
	}

	tabs := []string{"Select Residences", "My Applications"}
	for i, t := range tabs {
		if Screen(i) == m.screen {
			tabs[i] = m.theme.Cursor.Render(" " + t + " ")
		} else {
			tabs[i] = m.theme.Muted.Render(" " + t + " ")
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(tabs, " "), "")
}

func (m Model) renderSelection() string {
	v := m.page.View()
	var b strings.Builder

	b.WriteString(m.theme.Normal.Render(v.Counter))
	b.WriteString("  ")
	b.WriteString(m.progress.ViewAs(v.Progress / 100))
	b.WriteString(" ")
	b.WriteString(m.theme.Muted.Render(v.ProgressLabel))
	b.WriteString("\n\n")

	var rows []string
	if v.IsEmpty() {
		rows = append(rows, m.theme.Muted.Render(v.Placeholder))
	}
	for _, r := range v.Rows {
		rows = append(rows, fmt.Sprintf("%d. %s", r.Index+1, r.Label))
	}
	b.WriteString(m.theme.Box.Render(strings.Join(rows, "\n")))
	b.WriteString("\n\n")

	cursor := clamp(m.cursor, len(v.Cards))
	for i, c := range v.Cards {
		b.WriteString(m.renderCard(c, i == cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.page.Submitting():
		b.WriteString(m.spinner.View() + " Submitting...")
	case v.SubmitEnabled:
		b.WriteString(m.theme.Success.Render("Ready. Press s to submit your application."))
	default:
		b.WriteString(m.theme.Muted.Render("Select residences to enable submit."))
	}
	return b.String()
}

func (m Model) renderCard(c portal.Card, focused bool) string {
	marker := "  "
	if focused {
		marker = m.theme.Cursor.Render(">") + " "
	}

	where := "off-campus"
	if c.OnCampus {
		where = "on-campus"
	}
	name := fmt.Sprintf("%-28s %-10s", c.Residence, where)

	block := ""
	if len(c.Blocks) > 0 {
		chosen := c.Block
		if chosen == "" {
			chosen = "choose block"
		}
		block = fmt.Sprintf(" ‹ %s ›", chosen)
	}

	label := "[" + c.Label + "]"
	switch {
	case c.Selected:
		label = m.theme.Selected.Render(label)
	case c.Disabled:
		label = m.theme.Disabled.Render(label)
		if c.Reason != "" {
			label += " " + m.theme.Muted.Render(c.Reason)
		}
	default:
		label = m.theme.Info.Render(label)
	}

	return marker + m.theme.Normal.Render(name) + m.theme.Subtitle.Render(block) + " " + label
}

func (m Model) renderApplications() string {
	if m.loading && len(m.apps) == 0 {
		return m.spinner.View() + " Loading applications..."
	}
	if len(m.apps) == 0 {
		return m.theme.Muted.Render("You have not applied to any residence yet.")
	}

	var b strings.Builder
	head := fmt.Sprintf("  %-32s %-10s %-16s %s", "Residence", "Status", "Applied", "Room")
	b.WriteString(m.theme.Subtitle.Render(head))
	b.WriteString("\n")

	for i, r := range m.apps {
		marker := "  "
		if i == m.appCursor {
			marker = m.theme.Cursor.Render(">") + " "
		}
		room := r.Room
		if room == "" {
			room = "-"
		}
		status := m.theme.Status(r.Status)
		if pad := 10 - lipgloss.Width(status); pad > 0 {
			status += strings.Repeat(" ", pad)
		}
		line := fmt.Sprintf("%-32s %s %-16s %s", r.Label, status, r.Applied, room)
		if r.CanRespond {
			line += "  " + m.theme.Info.Render("a accept · r decline")
		}
		b.WriteString(marker + line + "\n")
	}
	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " Sending response...")
	}
	return b.String()
}
