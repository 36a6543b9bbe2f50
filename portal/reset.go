// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/univen/housing-portal/models"
)

// Resetter is the part of the API the reset form uses. *client.Client
// satisfies it.
type Resetter interface {
	RequestReset(ctx context.Context, email string) (models.PasswordResetResponse, error)
	VerifyReset(ctx context.Context, email, otp, newPassword string) (models.SuccessResponse, error)
}

var ErrNoCodeRequested = errors.New("no code requested")

// ResetFlow is the three step password reset form: request a code, verify
// it, set the new password. Errors returned are ready to display.
type ResetFlow struct {
	api       Resetter
	countdown *Countdown
	clearCode func()

	mu       sync.Mutex
	// actual is the email on file the code was sent to. Later steps use
	// it instead of the typed address.
	actual   string
	code     string
	verified bool
}

type ResetOptions struct {
	TTL  time.Duration
	Tick time.Duration
	// Display receives the countdown line.
	Display func(string)
	// ClearCode is called when the entered code is discarded on expiry.
	ClearCode func()
}

func NewResetFlow(api Resetter, opts ResetOptions) *ResetFlow {
	f := &ResetFlow{api: api, clearCode: opts.ClearCode}
	f.countdown = NewCountdown(CountdownOptions{
		TTL:     opts.TTL,
		Tick:    opts.Tick,
		Display: opts.Display,
		Expired: f.expire,
		Reissue: f.reissue,
	})
	return f
}

func (f *ResetFlow) expire() {
	f.mu.Lock()
	f.code = ""
	f.verified = false
	f.mu.Unlock()
	if f.clearCode != nil {
		f.clearCode()
	}
}

func (f *ResetFlow) reissue(ctx context.Context) error {
	f.mu.Lock()
	email := f.actual
	f.mu.Unlock()
	_, err := f.api.RequestReset(ctx, email)
	return err
}

// RequestStudent sends a code for a student number.
func (f *ResetFlow) RequestStudent(ctx context.Context, number, domain string) (string, error) {
	email, err := StudentEmail(number, domain)
	if err != nil {
		return "", err
	}
	return f.request(ctx, email)
}

// RequestAdmin sends a code to an admin email.
func (f *ResetFlow) RequestAdmin(ctx context.Context, email string) (string, error) {
	if err := ValidateAdminEmail(email); err != nil {
		return "", err
	}
	return f.request(ctx, email)
}

// request returns the address the code was actually sent to.
func (f *ResetFlow) request(ctx context.Context, email string) (string, error) {
	resp, err := f.api.RequestReset(ctx, email)
	if err != nil {
		return "", ValidationError(RequestErrorText(err, "Failed to send OTP."))
	}

	actual := resp.ActualEmail
	if actual == "" {
		actual = email
	}
	f.mu.Lock()
	f.actual = actual
	f.code = ""
	f.verified = false
	f.mu.Unlock()

	f.countdown.Start()
	return actual, nil
}

// Verify checks a code without consuming it.
func (f *ResetFlow) Verify(ctx context.Context, code string) error {
	if err := ValidateCode(code); err != nil {
		return err
	}
	f.mu.Lock()
	email := f.actual
	f.mu.Unlock()
	if email == "" {
		return ErrNoCodeRequested
	}

	if _, err := f.api.VerifyReset(ctx, email, code, ""); err != nil {
		return ValidationError(RequestErrorText(err, "Failed to verify OTP."))
	}

	f.mu.Lock()
	f.code = code
	f.verified = true
	f.mu.Unlock()
	return nil
}

// Reset sets the new password with the verified code and stops the
// countdown.
func (f *ResetFlow) Reset(ctx context.Context, password, confirm string) error {
	if err := ValidateNewPassword(password, confirm); err != nil {
		return err
	}
	f.mu.Lock()
	email, code, verified := f.actual, f.code, f.verified
	f.mu.Unlock()
	if !verified {
		return ErrNoCodeRequested
	}

	if _, err := f.api.VerifyReset(ctx, email, code, password); err != nil {
		return ValidationError(RequestErrorText(err, "Failed to reset password."))
	}
	f.countdown.Stop()

	f.mu.Lock()
	f.code = ""
	f.verified = false
	f.mu.Unlock()
	return nil
}

// Email is the address the last code was sent to.
func (f *ResetFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actual
}

func (f *ResetFlow) Verified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified
}

func (f *ResetFlow) Countdown() *Countdown {
	return f.countdown
}

// Close stops the countdown.
func (f *ResetFlow) Close() {
	f.countdown.Stop()
}
