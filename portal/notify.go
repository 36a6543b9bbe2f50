// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"sync"
	"time"
)

// DefaultNotifyDelay is how long a notification stays visible.
const DefaultNotifyDelay = 3 * time.Second

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notification is one transient status message. ID increases with every
// Notify call.
type Notification struct {
	ID      uint64
	Message string
	Kind    Kind
}

// Presenter displays notifications. Its methods run with the notifier's
// lock held and must not call back into the Notifier.
type Presenter interface {
	Show(Notification)
	Dismiss(Notification)
}

// PresenterFuncs adapts two functions to a Presenter. Either may be nil.
type PresenterFuncs struct {
	OnShow    func(Notification)
	OnDismiss func(Notification)
}

func (p PresenterFuncs) Show(n Notification) {
	if p.OnShow != nil {
		p.OnShow(n)
	}
}

func (p PresenterFuncs) Dismiss(n Notification) {
	if p.OnDismiss != nil {
		p.OnDismiss(n)
	}
}

// Notifier keeps at most one notification visible and dismisses it after a
// fixed delay. It is safe for concurrent use.
type Notifier struct {
	mu        sync.Mutex
	presenter Presenter
	delay     time.Duration
	seq       uint64
	current   *Notification
	timer     *time.Timer
}

// NewNotifier creates a notifier. A non-positive delay uses
// DefaultNotifyDelay. A nil presenter discards everything.
func NewNotifier(p Presenter, delay time.Duration) *Notifier {
	if delay <= 0 {
		delay = DefaultNotifyDelay
	}
	if p == nil {
		p = PresenterFuncs{}
	}
	return &Notifier{presenter: p, delay: delay}
}

// Notify replaces the visible notification.
func (n *Notifier) Notify(message string, kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dismissLocked()

	n.seq++
	note := Notification{ID: n.seq, Message: message, Kind: kind}
	n.current = &note
	n.presenter.Show(note)

	id := note.ID
	n.timer = time.AfterFunc(n.delay, func() { n.expire(id) })
}

// expire dismisses notification id unless a newer one replaced it.
func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.current.ID != id {
		return
	}
	n.dismissLocked()
}

func (n *Notifier) dismissLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if n.current != nil {
		n.presenter.Dismiss(*n.current)
		n.current = nil
	}
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Clear dismisses the visible notification now.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dismissLocked()
}

func (n *Notifier) Delay() time.Duration {
	return n.delay
}
