// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"github.com/univen/housing-portal/models"
)

// wakeMsg tells the model that state owned by another goroutine changed.
type wakeMsg struct{}

type submitDoneMsg struct {
	err error
}

type appsLoadedMsg struct {
	err  error
	apps []models.StudentApplication
}

type offerMsg struct {
	err    error
	id     string
	accept bool
	room   *string
}

// Reset form messages.
type requestedMsg struct {
	err   error
	email string
}

type verifiedMsg struct {
	err error
}

type resetDoneMsg struct {
	err error
}
