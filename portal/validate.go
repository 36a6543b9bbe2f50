// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"errors"
	"regexp"
	"strings"

	"github.com/univen/housing-portal/client"
)

// DefaultStudentDomain is the mail domain of student numbers.
const DefaultStudentDomain = "mvula.univen.ac.za"

const (
	maxStudentNumber = 50
	maxAdminEmail    = 100
	minPassword      = 8
	maxPassword      = 255
)

// ValidationError is a form error meant to be shown as is.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrStudentNumber    ValidationError = "Please enter a valid student number (max 50 characters)."
	ErrAdminEmail       ValidationError = "Please enter a valid admin email."
	ErrAdminEmailLength ValidationError = "Email length exceeds allowed limit (100 characters)."
	ErrCodeFormat       ValidationError = "Code must be a 6-digit number."
	ErrPasswordShort    ValidationError = "Password must be at least 8 characters."
	ErrPasswordMismatch ValidationError = "Passwords do not match."
	ErrPasswordLong     ValidationError = "Password length exceeds allowed limit (255 characters)."
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

// StudentEmail returns the address a student number resets through.
func StudentEmail(number, domain string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > maxStudentNumber {
		return "", ErrStudentNumber
	}
	if domain == "" {
		domain = DefaultStudentDomain
	}
	return number + "@" + domain, nil
}

func ValidateAdminEmail(email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrAdminEmail
	}
	if len(email) > maxAdminEmail {
		return ErrAdminEmailLength
	}
	return nil
}

func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return ErrCodeFormat
	}
	return nil
}

// ValidateNewPassword checks a new password and its confirmation, in the
// order the form reports them.
func ValidateNewPassword(password, confirm string) error {
	switch {
	case len(password) < minPassword:
		return ErrPasswordShort
	case password != confirm:
		return ErrPasswordMismatch
	case len(password) > maxPassword:
		return ErrPasswordLong
	}
	return nil
}

// RequestErrorText turns a failed API call into the form's error line.
// fallback is used when the server gave no message.
func RequestErrorText(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return "Server error. Please try again later."
}
