// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/univen/housing-portal/portal"
)

const resetDoneText = "Password updated successfully! Redirecting to login..."

var ErrResetIncomplete = errors.New("password reset not completed")

// ResetAPI is the server side of the reset form.
type ResetAPI interface {
	portal.Resetter
}

type ResetConfig struct {
	Theme *Theme
	// Admin switches the first step from student number to admin email.
	Admin         bool
	StudentDomain string
	TTL           time.Duration
	Tick          time.Duration
	// DoneDelay is how long the success message stays before quitting.
	DoneDelay time.Duration
}

type resetStep int

const (
	stepIdentify resetStep = iota
	stepVerify
	stepPassword
	stepDone
)

// ResetModel is the three step password reset form with the OTP countdown.
type ResetModel struct {
	flow   *portal.ResetFlow
	bridge *bridge
	cfg    ResetConfig
	theme  Theme

	step     resetStep
	ident    textinput.Model
	code     textinput.Model
	password textinput.Model
	confirm  textinput.Model
	sentTo   string
	errText  string
	busy     bool
}

func NewResetModel(api ResetAPI, cfg ResetConfig) ResetModel {
	theme := Default
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	if cfg.DoneDelay == 0 {
		cfg.DoneDelay = portal.DefaultRedirectDelay
	}

	b := newBridge()
	flow := portal.NewResetFlow(api, portal.ResetOptions{
		TTL:       cfg.TTL,
		Tick:      cfg.Tick,
		Display:   b.display,
		ClearCode: b.clearCode,
	})

	ident := textinput.New()
	if cfg.Admin {
		ident.Placeholder = "admin@example.com"
		ident.CharLimit = 100
	} else {
		ident.Placeholder = "student number"
		ident.CharLimit = 50
	}
	ident.Focus()

	code := textinput.New()
	code.Placeholder = "6-digit code"
	code.CharLimit = 6

	password := textinput.New()
	password.Placeholder = "new password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 255

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 255

	return ResetModel{
		flow:     flow,
		bridge:   b,
		cfg:      cfg,
		theme:    theme,
		ident:    ident,
		code:     code,
		password: password,
		confirm:  confirm,
	}
}

func (m ResetModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.wait())
}

// Close stops the countdown.
func (m ResetModel) Close() {
	m.flow.Close()
	m.bridge.close()
}

// Done reports whether the password was changed.
func (m ResetModel) Done() bool {
	return m.step == stepDone
}

func (m ResetModel) Flow() *portal.ResetFlow {
	return m.flow
}

func (m ResetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case wakeMsg:
		if m.bridge.takeCleared() {
			m.code.Reset()
			if m.step == stepPassword {
				m.step = stepVerify
				m.focus()
			}
		}
		return m, m.bridge.wait()

	case requestedMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.sentTo = msg.email
		m.step = stepVerify
		m.focus()
		return m, nil

	case verifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.step = stepPassword
		m.focus()
		return m, nil

	case resetDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.step = stepDone
		m.focus()
		return m, tea.Tick(m.cfg.DoneDelay, func(time.Time) tea.Msg { return tea.Quit() })
	}

	return m.updateInputs(msg)
}

func (m ResetModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab:
		if m.step == stepPassword {
			if m.password.Focused() {
				m.password.Blur()
				m.confirm.Focus()
			} else {
				m.confirm.Blur()
				m.password.Focus()
			}
		}
		return m, nil
	case tea.KeyEnter:
		if m.step == stepDone {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.submitStep()
	}
	if m.step == stepDone {
		return m, tea.Quit
	}
	return m.updateInputs(msg)
}

func (m ResetModel) submitStep() (tea.Model, tea.Cmd) {
	flow := m.flow
	switch m.step {
	case stepIdentify:
		ident := strings.TrimSpace(m.ident.Value())
		admin, domain := m.cfg.Admin, m.cfg.StudentDomain
		m.busy = true
		return m, func() tea.Msg {
			ctx := context.Background()
			var (
				email string
				err   error
			)
			if admin {
				email, err = flow.RequestAdmin(ctx, ident)
			} else {
				email, err = flow.RequestStudent(ctx, ident, domain)
			}
			return requestedMsg{email: email, err: err}
		}

	case stepVerify:
		code := strings.TrimSpace(m.code.Value())
		m.busy = true
		return m, func() tea.Msg {
			return verifiedMsg{err: flow.Verify(context.Background(), code)}
		}

	case stepPassword:
		if m.password.Focused() {
			m.password.Blur()
			m.confirm.Focus()
			return m, nil
		}
		password, confirm := m.password.Value(), m.confirm.Value()
		m.busy = true
		return m, func() tea.Msg {
			return resetDoneMsg{err: flow.Reset(context.Background(), password, confirm)}
		}
	}
	return m, nil
}

// focus moves keyboard focus to the current step's first input.
func (m *ResetModel) focus() {
	m.ident.Blur()
	m.code.Blur()
	m.password.Blur()
	m.confirm.Blur()
	switch m.step {
	case stepIdentify:
		m.ident.Focus()
	case stepVerify:
		m.code.Focus()
	case stepPassword:
		m.password.Focus()
	}
}

func (m ResetModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case stepIdentify:
		m.ident, cmd = m.ident.Update(msg)
	case stepVerify:
		m.code, cmd = m.code.Update(msg)
	case stepPassword:
		var c1, c2 tea.Cmd
		m.password, c1 = m.password.Update(msg)
		m.confirm, c2 = m.confirm.Update(msg)
		cmd = tea.Batch(c1, c2)
	}
	return m, cmd
}

func (m ResetModel) View() string {
	parts := []string{m.theme.Title.Render("Reset Password")}

	switch m.step {
	case stepIdentify:
		label := "Student number"
		if m.cfg.Admin {
			label = "Admin email"
		}
		parts = append(parts, m.theme.Subtitle.Render(label), m.ident.View())
	case stepVerify:
		parts = append(parts,
			m.theme.Subtitle.Render("Enter the code sent to "+m.sentTo),
			m.code.View(),
			m.theme.Warning.Render(m.bridge.timerLine()),
		)
	case stepPassword:
		parts = append(parts,
			m.theme.Subtitle.Render("Choose a new password"),
			m.password.View(),
			m.confirm.View(),
			m.theme.Warning.Render(m.bridge.timerLine()),
		)
	case stepDone:
		parts = append(parts, m.theme.Success.Render(resetDoneText))
	}

	if m.errText != "" {
		parts = append(parts, "", m.theme.Error.Render(m.errText))
	}
	if m.busy {
		parts = append(parts, "", m.theme.Muted.Render("Please wait..."))
	}
	if m.step != stepDone {
		parts = append(parts, "", m.theme.Muted.Render("enter continue · tab next field · esc quit"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
