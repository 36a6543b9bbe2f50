// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/selection"
)

const (
	DashboardPath = "/dashboard?section=application"
	LoginPath     = "/login"

	// DefaultRedirectDelay is the pause between a successful submit and the
	// move to the dashboard.
	DefaultRedirectDelay = 2 * time.Second
)

var (
	ErrNotReady       = errors.New("selection incomplete")
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrUnknownEvent   = errors.New("unknown event")
	// ErrNotAccepted is a 2xx answer without success.
	ErrNotAccepted = errors.New("submission not accepted")
)

// Applicant submits selections. *client.Client satisfies it.
type Applicant interface {
	SubmitApplications(ctx context.Context, selections []models.ResidenceSelection) (models.CreateApplicationsResponse, error)
}

type Renderer interface {
	Render(SelectionView)
}

type RendererFunc func(SelectionView)

func (f RendererFunc) Render(v SelectionView) { f(v) }

type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// SubmittedRecord is the local copy of a submission kept until the next
// refresh from the server.
type SubmittedRecord struct {
	Residences  []string
	Status      string
	SubmittedAt time.Time
}

type Options struct {
	Config     selection.Config
	Residences []Residence
	Notifier   *Notifier
	Renderer   Renderer
	Navigator  Navigator
	// RedirectDelay defaults to DefaultRedirectDelay; negative disables the
	// redirect.
	RedirectDelay time.Duration
	Now           func() time.Time
}

// Page is one residence selection session. Every mutation re-renders
// synchronously before returning, so renders arrive in mutation order. It is
// safe for concurrent use.
type Page struct {
	mu         sync.Mutex
	api        Applicant
	policy     selection.Policy
	set        *selection.Set
	residences []Residence
	blocks     map[string]string
	submitting bool
	submitted  []SubmittedRecord

	notifier      *Notifier
	renderer      Renderer
	navigator     Navigator
	redirectDelay time.Duration
	redirect      *time.Timer
	now           func() time.Time
}

// NewPage creates a page and renders its initial view.
func NewPage(api Applicant, opts Options) *Page {
	if opts.Notifier == nil {
		opts.Notifier = NewNotifier(nil, 0)
	}
	if opts.Renderer == nil {
		opts.Renderer = RendererFunc(func(SelectionView) {})
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func(string) {})
	}
	if opts.RedirectDelay == 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Page{
		api:           api,
		policy:        selection.NewPolicy(opts.Config),
		set:           selection.NewSet(opts.Config),
		residences:    opts.Residences,
		blocks:        map[string]string{},
		notifier:      opts.Notifier,
		renderer:      opts.Renderer,
		navigator:     opts.Navigator,
		redirectDelay: opts.RedirectDelay,
		now:           opts.Now,
	}

	p.mu.Lock()
	p.renderLocked()
	p.mu.Unlock()
	return p
}

func (p *Page) stateLocked() State {
	blocks := make(map[string]string, len(p.blocks))
	for k, v := range p.blocks {
		blocks[k] = v
	}
	return State{
		Config:     p.set.Config(),
		Choices:    p.set.Choices(),
		Residences: p.residences,
		Blocks:     blocks,
		Submitting: p.submitting,
	}
}

func (p *Page) renderLocked() {
	p.renderer.Render(Render(p.stateLocked()))
}

// View returns the current view without pushing it to the renderer.
func (p *Page) View() SelectionView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Render(p.stateLocked())
}

func (p *Page) residence(name string) (Residence, bool) {
	for _, r := range p.residences {
		if r.Name == name {
			return r, true
		}
	}
	return Residence{}, false
}

// SelectBlock records the block chosen on a residence card.
func (p *Page) SelectBlock(residence, block string) {
	p.mu.Lock()
	p.blocks[residence] = block
	p.renderLocked()
	p.mu.Unlock()
}

// Apply adds residence, with the block chosen on its card, to the selection.
func (p *Page) Apply(residence string) selection.Verdict {
	p.mu.Lock()

	block := p.blocks[residence]
	card, known := p.residence(residence)
	requiresBlock := known && card.RequiresBlock()

	cfg := p.policy.Config()
	var msg string
	v := p.policy.CanApply(p.set, residence, block, requiresBlock)
	switch v {
	case selection.Admit:
		err := p.set.Add(selection.Choice{Residence: residence, Block: block})
		switch {
		case err == nil:
			p.renderLocked()
		case errors.Is(err, selection.ErrDuplicate):
			v, msg = selection.RejectDuplicate, "You have already selected this option."
		case errors.Is(err, selection.ErrSetFull):
			v = selection.RejectLimitReached
			msg = fmt.Sprintf("You can select at most %d residences. Remove one to choose another.", cfg.MaxSelections)
		default:
			v = selection.RejectLimitReached
			msg = onCampusLimitMessage(cfg)
		}
	case selection.RejectLimitReached:
		msg = onCampusLimitMessage(cfg)
	case selection.RejectNoBlockSelected:
		msg = "Please select a block first."
	case selection.RejectDuplicate:
		msg = "You have already selected this option."
	}
	p.mu.Unlock()

	if msg != "" {
		p.notifier.Notify(msg, KindWarning)
	}
	return v
}

func onCampusLimitMessage(cfg selection.Config) string {
	return fmt.Sprintf("You have reached the maximum on-campus applications (%d). You can still apply to off-campus residences.", cfg.MaxOnCampus)
}

// Remove drops the pending choice at index.
func (p *Page) Remove(index int) error {
	p.mu.Lock()
	_, err := p.set.RemoveAt(index)
	if err == nil {
		p.renderLocked()
	}
	p.mu.Unlock()

	if err != nil {
		p.notifier.Notify("Could not remove that application.", KindError)
		return err
	}
	p.notifier.Notify("Application removed. You can select another residence.", KindInfo)
	return nil
}

func (p *Page) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set.Count()
}

// Choices returns the pending choices in order.
func (p *Page) Choices() []selection.Choice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set.Choices()
}

// Submitted returns the local records of successful submissions.
func (p *Page) Submitted() []SubmittedRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SubmittedRecord, len(p.submitted))
	copy(out, p.submitted)
	return out
}

// Submitting reports whether a submission is in flight.
func (p *Page) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting
}

// Submit sends the pending choices. Nothing is sent unless exactly
// MaxSelections choices are pending and no other submit is running. The
// page lock is released during the network call.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return ErrSubmitInFlight
	}
	want := p.set.Config().MaxSelections
	if p.set.Count() != want {
		p.mu.Unlock()
		p.notifier.Notify(fmt.Sprintf("You must select exactly %d residences to submit.", want), KindWarning)
		return ErrNotReady
	}
	p.submitting = true
	choices := p.set.Choices()
	p.renderLocked()
	p.mu.Unlock()

	settled := false
	defer func() {
		if settled {
			return
		}
		p.mu.Lock()
		p.submitting = false
		p.renderLocked()
		p.mu.Unlock()
	}()

	selections := make([]models.ResidenceSelection, len(choices))
	labels := make([]string, len(choices))
	for i, c := range choices {
		selections[i] = models.ResidenceSelection{ResidenceName: c.Residence, Block: c.Block}
		labels[i] = c.Label()
	}

	resp, err := p.api.SubmitApplications(ctx, selections)
	if err == nil && !resp.Success {
		err = ErrNotAccepted
	}

	p.mu.Lock()
	p.submitting = false
	settled = true
	if err == nil {
		p.submitted = append(p.submitted, SubmittedRecord{
			Residences:  labels,
			Status:      models.StatusPending,
			SubmittedAt: p.now(),
		})
		p.set.Reset()
		p.blocks = map[string]string{}
	}
	p.renderLocked()
	p.mu.Unlock()

	switch {
	case errors.Is(err, client.ErrUnauthenticated):
		slog.Info("session expired during submit")
		p.navigator.Navigate(LoginPath)
		return err
	case errors.Is(err, ErrNotAccepted):
		msg := resp.Message
		if msg == "" {
			msg = "Error submitting application"
		}
		p.notifier.Notify(msg, KindError)
		return err
	case err != nil:
		slog.Warn("application submit failed", "error", err)
		p.notifier.Notify("Submit error: "+submitMessage(err), KindError)
		return err
	}

	slog.Info("applications submitted", "application_ids", resp.ApplicationIDs)
	p.notifier.Notify(fmt.Sprintf("Application submitted successfully! Redirecting to My Applications in %s...", delayText(p.redirectDelay)), KindSuccess)
	p.scheduleRedirect()
	return nil
}

func submitMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return "Submit failed"
		}
		return apiErr.Message
	}
	return err.Error()
}

func delayText(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", secs)
}

func (p *Page) scheduleRedirect() {
	if p.redirectDelay < 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redirect != nil {
		p.redirect.Stop()
	}
	p.redirect = time.AfterFunc(p.redirectDelay, func() {
		p.navigator.Navigate(DashboardPath)
	})
}

// Close cancels a pending redirect.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redirect != nil {
		p.redirect.Stop()
		p.redirect = nil
	}
}
