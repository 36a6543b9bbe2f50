// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
	"github.com/univen/housing-portal/selection"
)

// Screen is the visible student screen.
type Screen int

const (
	ScreenSelect Screen = iota
	ScreenApplications
)

const requestTimeout = 30 * time.Second

var ErrSessionExpired = errors.New("session expired, log in again")

// StudentAPI is what the student screens need from the server.
// *client.Client satisfies it.
type StudentAPI interface {
	portal.Applicant
	MyApplications(ctx context.Context) ([]models.StudentApplication, error)
	AcceptOffer(ctx context.Context, applicationID string) (*string, error)
	RejectOffer(ctx context.Context, applicationID string) error
}

// Config holds the student screen configuration.
type Config struct {
	// Theme defaults to Default.
	Theme         *Theme
	Selection     selection.Config
	Residences    []portal.Residence
	StudentName   string
	NotifyDelay   time.Duration
	RedirectDelay time.Duration
	Now           func() time.Time
}

// Model is the bubbletea model for the student portal: the residence
// selection page and the applications list.
type Model struct {
	api      StudentAPI
	theme    Theme
	keys     KeyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model
	now      func() time.Time
	student  string

	bridge   *bridge
	page     *portal.Page
	notifier *portal.Notifier

	screen    Screen
	cursor    int
	apps      []portal.ApplicationRow
	appCursor int
	loading   bool
	busy      bool
	expired   bool
	width     int
	height    int
}

// NewModel builds the student model. Call Close when done with it.
func NewModel(api StudentAPI, cfg Config) Model {
	theme := Default
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NotifyDelay == 0 {
		cfg.NotifyDelay = portal.DefaultNotifyDelay
	}

	b := newBridge()
	notifier := portal.NewNotifier(b, cfg.NotifyDelay)
	page := portal.NewPage(api, portal.Options{
		Config:        cfg.Selection,
		Residences:    cfg.Residences,
		Notifier:      notifier,
		Renderer:      b,
		Navigator:     b,
		RedirectDelay: cfg.RedirectDelay,
		Now:           cfg.Now,
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Info

	return Model{
		api:      api,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner:  s,
		now:      cfg.Now,
		student:  cfg.StudentName,
		bridge:   b,
		page:     page,
		notifier: notifier,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), m.spinner.Tick)
}

// Close stops the page timers and releases the wakeup goroutine.
func (m Model) Close() {
	m.page.Close()
	m.notifier.Clear()
	m.bridge.close()
}

// Expired reports whether the server rejected the session.
func (m Model) Expired() bool {
	return m.expired
}

func (m Model) Screen() Screen {
	return m.screen
}

// Page exposes the selection page driven by the model.
func (m Model) Page() *portal.Page {
	return m.page
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(40, max(10, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case wakeMsg:
		cmds := []tea.Cmd{m.bridge.wait()}
		switch m.bridge.takeNav() {
		case portal.DashboardPath:
			m.screen = ScreenApplications
			cmds = append(cmds, m.startLoad())
			m.loading = true
		case portal.LoginPath:
			m.expired = true
			return m, tea.Quit
		}
		return m, tea.Batch(cmds...)

	case submitDoneMsg:
		if msg.err != nil {
			slog.Debug("submit finished", "error", msg.err)
		}
		return m, nil

	case appsLoadedMsg:
		m.loading = false
		if errors.Is(msg.err, client.ErrUnauthenticated) {
			m.expired = true
			return m, tea.Quit
		}
		if msg.err != nil {
			m.notifier.Notify(portal.RequestErrorText(msg.err, "Failed to load applications."), portal.KindError)
			return m, nil
		}
		m.apps = portal.ApplicationRows(msg.apps, m.page.Submitted(), m.now())
		m.appCursor = clamp(m.appCursor, len(m.apps))
		return m, nil

	case offerMsg:
		return m.handleOffer(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Switch):
		if m.screen == ScreenSelect {
			m.screen = ScreenApplications
			m.loading = true
			return m, m.startLoad()
		}
		m.screen = ScreenSelect
		return m, nil
	}

	if m.screen == ScreenApplications {
		return m.handleApplicationsKey(msg)
	}
	return m.handleSelectKey(msg)
}

func (m Model) handleSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := m.page.View().Cards
	if len(cards) == 0 {
		return m, nil
	}
	m.cursor = clamp(m.cursor, len(cards))
	card := cards[m.cursor]
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(cards)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextBlock):
		if block, ok := cycleBlock(card, 1); ok {
			_ = m.page.Dispatch(ctx, portal.SelectBlockEvent{Residence: card.Residence, Block: block})
		}
	case key.Matches(msg, m.keys.PrevBlock):
		if block, ok := cycleBlock(card, -1); ok {
			_ = m.page.Dispatch(ctx, portal.SelectBlockEvent{Residence: card.Residence, Block: block})
		}
	case key.Matches(msg, m.keys.Apply):
		// Rejections are reported through the notifier.
		_ = m.page.Dispatch(ctx, portal.ApplyEvent{Residence: card.Residence})
	case key.Matches(msg, m.keys.Remove):
		for i, c := range m.page.Choices() {
			if c.Residence == card.Residence {
				_ = m.page.Dispatch(ctx, portal.RemoveEvent{Index: i})
				break
			}
		}
	case key.Matches(msg, m.keys.Submit):
		if m.page.Submitting() {
			return m, nil
		}
		return m, m.submit()
	}
	return m, nil
}

func (m Model) handleApplicationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.appCursor > 0 {
			m.appCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.appCursor < len(m.apps)-1 {
			m.appCursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.startLoad()
	case key.Matches(msg, m.keys.Accept), key.Matches(msg, m.keys.Decline):
		if m.busy || len(m.apps) == 0 {
			return m, nil
		}
		row := m.apps[m.appCursor]
		if !row.CanRespond || row.Local {
			return m, nil
		}
		m.busy = true
		return m, m.respond(row.ID, key.Matches(msg, m.keys.Accept))
	}
	return m, nil
}

func (m Model) handleOffer(msg offerMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if errors.Is(msg.err, client.ErrUnauthenticated) {
		m.expired = true
		return m, tea.Quit
	}
	if msg.err != nil {
		fallback := "Failed to decline offer."
		if msg.accept {
			fallback = "Failed to accept offer."
		}
		m.notifier.Notify(portal.RequestErrorText(msg.err, fallback), portal.KindError)
		return m, nil
	}

	switch {
	case msg.accept && msg.room != nil:
		m.notifier.Notify("Offer accepted! Your room number is "+*msg.room+".", portal.KindSuccess)
	case msg.accept:
		m.notifier.Notify("Offer accepted!", portal.KindSuccess)
	default:
		m.notifier.Notify("Offer declined.", portal.KindInfo)
	}
	m.loading = true
	return m, m.startLoad()
}

// cycleBlock returns the block step places after the card's current one.
func cycleBlock(card portal.Card, step int) (string, bool) {
	n := len(card.Blocks)
	if n == 0 {
		return "", false
	}
	idx := -1
	for i, b := range card.Blocks {
		if b == card.Block {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = n - 1
	case idx < 0:
		idx = 0
	default:
		idx = ((idx+step)%n + n) % n
	}
	return card.Blocks[idx], true
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
