// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the student screens until the user quits. It returns
// ErrSessionExpired when the server rejected the session.
func Run(ctx context.Context, api StudentAPI, cfg Config) error {
	if api == nil {
		return fmt.Errorf("api is required")
	}
	if len(cfg.Residences) == 0 {
		return fmt.Errorf("no residences to choose from")
	}

	m := NewModel(api, cfg)
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("portal screen: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.Expired() {
		return ErrSessionExpired
	}
	return nil
}

// RunReset shows the password reset form.
func RunReset(ctx context.Context, api ResetAPI, cfg ResetConfig) error {
	if api == nil {
		return fmt.Errorf("api is required")
	}

	m := NewResetModel(api, cfg)
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("reset screen: %w", err)
	}
	if fm, ok := final.(ResetModel); ok && !fm.Done() {
		return ErrResetIncomplete
	}
	return nil
}
