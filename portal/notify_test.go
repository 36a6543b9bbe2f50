// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// screen records what a presenter was asked to show.
type screen struct {
	mu        sync.Mutex
	visible   []Notification
	shown     []Notification
	dismissed []Notification
}

func (s *screen) Show(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = append(s.visible, n)
	s.shown = append(s.shown, n)
}

func (s *screen) Dismiss(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.visible {
		if v.ID == n.ID {
			s.visible = append(s.visible[:i], s.visible[i+1:]...)
			break
		}
	}
	s.dismissed = append(s.dismissed, n)
}

func (s *screen) Visible() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.visible...)
}

func (s *screen) Last() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.shown) == 0 {
		return Notification{}, false
	}
	return s.shown[len(s.shown)-1], true
}

func TestNotifier_AtMostOneVisible(t *testing.T) {
	scr := &screen{}
	n := NewNotifier(scr, time.Hour)

	n.Notify("first", KindInfo)
	n.Notify("second", KindWarning)

	visible := scr.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "second", visible[0].Message)
	assert.Equal(t, KindWarning, visible[0].Kind)

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Message)
	assert.Greater(t, cur.ID, uint64(1))
}

func TestNotifier_AutoDismiss(t *testing.T) {
	scr := &screen{}
	n := NewNotifier(scr, 20*time.Millisecond)

	n.Notify("saved", KindSuccess)
	require.Len(t, scr.Visible(), 1)

	assert.Eventually(t, func() bool { return len(scr.Visible()) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := n.Current()
	assert.False(t, ok)
}

func TestNotifier_StaleTimerKeepsNewer(t *testing.T) {
	scr := &screen{}
	n := NewNotifier(scr, 100*time.Millisecond)

	n.Notify("old", KindInfo)
	time.Sleep(60 * time.Millisecond)
	n.Notify("new", KindInfo)

	// The first timer would have fired by now
	time.Sleep(60 * time.Millisecond)
	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "new", cur.Message)

	assert.Eventually(t, func() bool { _, ok := n.Current(); return !ok }, time.Second, 5*time.Millisecond)
}

func TestNotifier_Defaults(t *testing.T) {
	n := NewNotifier(nil, 0)
	assert.Equal(t, DefaultNotifyDelay, n.Delay())

	n.Notify("nobody is watching", KindError)
	n.Clear()
	_, ok := n.Current()
	assert.False(t, ok)
}
