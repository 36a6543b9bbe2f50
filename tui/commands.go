// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/univen/housing-portal/portal"
)

// submit runs the page submission off the event loop. The page reports the
// outcome through the notifier and navigator.
func (m Model) submit() tea.Cmd {
	page := m.page
	return func() tea.Msg {
		return submitDoneMsg{err: page.Dispatch(context.Background(), portal.SubmitEvent{})}
	}
}

// startLoad fetches the signed-in student's applications.
func (m Model) startLoad() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		apps, err := api.MyApplications(ctx)
		return appsLoadedMsg{apps: apps, err: err}
	}
}

// respond accepts or declines an approved offer.
func (m Model) respond(id string, accept bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if !accept {
			return offerMsg{id: id, err: api.RejectOffer(ctx, id)}
		}
		room, err := api.AcceptOffer(ctx, id)
		return offerMsg{id: id, accept: true, room: room, err: err}
	}
}
