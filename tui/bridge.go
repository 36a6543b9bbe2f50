// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/univen/housing-portal/portal"
)

// bridge carries callbacks from the page, notifier and countdown goroutines
// into the program. Callbacks never block: wakeups coalesce into a single
// pending wakeMsg and the model reads current state when it handles it.
type bridge struct {
	wake chan struct{}
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	nav     string
	timer   string
	cleared bool
	renders int
}

func newBridge() *bridge {
	return &bridge{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (b *bridge) poke() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// wait returns a command that resolves on the next wakeup.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.wake:
			return wakeMsg{}
		case <-b.done:
			return nil
		}
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}

func (b *bridge) Render(portal.SelectionView) {
	b.mu.Lock()
	b.renders++
	b.mu.Unlock()
	b.poke()
}

func (b *bridge) Show(portal.Notification) { b.poke() }

func (b *bridge) Dismiss(portal.Notification) { b.poke() }

func (b *bridge) Navigate(path string) {
	b.mu.Lock()
	b.nav = path
	b.mu.Unlock()
	b.poke()
}

func (b *bridge) display(line string) {
	b.mu.Lock()
	b.timer = line
	b.mu.Unlock()
	b.poke()
}

func (b *bridge) clearCode() {
	b.mu.Lock()
	b.cleared = true
	b.mu.Unlock()
	b.poke()
}

// takeNav returns and forgets the pending navigation target.
func (b *bridge) takeNav() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	nav := b.nav
	b.nav = ""
	return nav
}

func (b *bridge) takeCleared() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.cleared
	b.cleared = false
	return c
}

func (b *bridge) timerLine() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer
}
