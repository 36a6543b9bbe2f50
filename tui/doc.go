// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tui is the terminal front end of the housing portal.
//
// Model drives a portal.Page through explicit events: the residence cards
// with their block pickers, the pending selection list and the submit
// action, plus a "My Applications" screen where approved offers can be
// accepted or declined. ResetModel is the password reset form with the live
// OTP countdown.
//
// The page, its notifier and the countdown call back from their own
// goroutines. Those callbacks only record what changed and wake the program;
// the model reads current state on the next update, so a callback never
// blocks on the event loop.
package tui
