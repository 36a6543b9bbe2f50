// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"context"
	"fmt"

	"github.com/univen/housing-portal/selection"
)

// Event is a user action on the selection page.
type Event interface {
	event()
}

type ApplyEvent struct {
	Residence string
}

type SelectBlockEvent struct {
	Residence string
	Block     string
}

type RemoveEvent struct {
	Index int
}

type SubmitEvent struct{}

func (ApplyEvent) event()       {}
func (SelectBlockEvent) event() {}
func (RemoveEvent) event()      {}
func (SubmitEvent) event()      {}

// RejectedError reports an apply that the selection policy refused.
type RejectedError struct {
	Residence string
	Verdict   selection.Verdict
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Residence, e.Verdict)
}

// Dispatch routes an event to the matching page action. The user has
// already been notified of any error it returns.
func (p *Page) Dispatch(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case ApplyEvent:
		if v := p.Apply(ev.Residence); v != selection.Admit {
			return &RejectedError{Residence: ev.Residence, Verdict: v}
		}
		return nil
	case SelectBlockEvent:
		p.SelectBlock(ev.Residence, ev.Block)
		return nil
	case RemoveEvent:
		return p.Remove(ev.Index)
	case SubmitEvent:
		return p.Submit(ctx)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}
