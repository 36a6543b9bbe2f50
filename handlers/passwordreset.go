// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/sessions"
)

const (
	MinPasswordLength = 8
	// bcrypt rejects longer input
	MaxPasswordBytes = 72
)

var errAccountNotFound = errors.New("account not found")

type PasswordResetHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	codes    resetstore.Store
	sessions *sessions.Store
	mail     mailer.Mailer
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewPasswordResetHandler(db *sql.DB, cfg cliparse.Config, codes resetstore.Store, store *sessions.Store, mail mailer.Mailer, m *metrics.Metrics) *PasswordResetHandler {
	return &PasswordResetHandler{
		db:       db,
		cfg:      cfg,
		codes:    codes,
		sessions: store,
		mail:     mail,
		metrics:  m,
		now:      time.Now,
	}
}

type account struct {
	userType string
	userID   string
	email    string
}

// resolveAccount maps the address typed on the reset page to an account.
// A {number}@<student domain> address stands for the student with that
// number and resolves to the email on file.
func (h *PasswordResetHandler) resolveAccount(ctx context.Context, email string) (account, error) {
	if number, domain, ok := strings.Cut(email, "@"); ok && strings.EqualFold(domain, h.cfg.StudentEmailDomain) {
		s, err := getStudentBy(ctx, h.db, "student_number", number)
		if err == nil {
			return account{models.UserStudent, s.ID, s.Email}, nil
		}
		if !errors.Is(err, errStudentNotFound) {
			return account{}, err
		}
	}

	var a account
	err := h.db.QueryRowContext(ctx,
		"SELECT id, email FROM admin WHERE LOWER(email) = $1", strings.ToLower(email),
	).Scan(&a.userID, &a.email)
	if err == nil {
		a.userType = models.UserAdmin
		return a, nil
	}
	if err != sql.ErrNoRows {
		return account{}, fmt.Errorf("failed to look up admin: %w", err)
	}

	err = h.db.QueryRowContext(ctx,
		"SELECT id, email FROM student WHERE LOWER(email) = $1 ORDER BY student_number LIMIT 1", strings.ToLower(email),
	).Scan(&a.userID, &a.email)
	if err == nil {
		a.userType = models.UserStudent
		return a, nil
	}
	if err != sql.ErrNoRows {
		return account{}, fmt.Errorf("failed to look up student: %w", err)
	}
	return account{}, errAccountNotFound
}

// RequestReset handles POST /api/password-reset/request
func (h *PasswordResetHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PasswordResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email is required")
		return
	}

	acct, err := h.resolveAccount(ctx, email)
	if errors.Is(err, errAccountNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Email not found in our system")
		return
	}
	if err != nil {
		slog.Error("failed to resolve reset email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		slog.Error("failed to generate OTP", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate code")
		return
	}

	now := h.now()
	entry := resetstore.Entry{
		Email:     resetstore.NormalizeEmail(acct.email),
		Code:      code,
		UserType:  acct.userType,
		UserID:    acct.userID,
		ExpiresAt: now.Add(h.cfg.OTPTTL),
	}
	if err := h.codes.Put(ctx, entry); err != nil {
		slog.Error("failed to store reset code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate code")
		return
	}

	msg, err := mailer.ResetCode(acct.email, code, now, entry.ExpiresAt)
	if err == nil {
		err = h.mail.Send(ctx, msg)
	}
	if err != nil {
		slog.Error("failed to send password reset email", "to", acct.email, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send email. Please try again.")
		return
	}

	h.metrics.ResetCodesIssued.Inc()
	slog.Info("password reset code issued", "user_type", acct.userType, "user_id", acct.userID)

	middleware.JSONResponse(w, http.StatusOK, models.PasswordResetResponse{
		Success:     true,
		Message:     "OTP sent to your email",
		ActualEmail: acct.email,
	})
}

// VerifyReset handles POST /api/password-reset/verify. Without a new
// password it only checks the code and leaves it usable.
func (h *PasswordResetHandler) VerifyReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PasswordResetVerifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	req.NewPassword = strings.TrimSpace(req.NewPassword)

	if req.Email == "" || req.OTP == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	// Codes are stored under the email on file, which can differ from the
	// address typed on the request page.
	key := req.Email
	acct, err := h.resolveAccount(ctx, req.Email)
	switch {
	case err == nil:
		key = acct.email
	case !errors.Is(err, errAccountNotFound):
		slog.Error("failed to resolve reset email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	entry, err := resetstore.Check(ctx, h.codes, key, req.OTP, h.now())
	switch {
	case errors.Is(err, resetstore.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	case errors.Is(err, resetstore.ErrExpired):
		middleware.ErrorResponse(w, http.StatusBadRequest, "OTP has expired. Please request a new one.")
		return
	case errors.Is(err, auth.ErrInvalidOTP):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid OTP")
		return
	case err != nil:
		slog.Error("failed to check reset code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.NewPassword == "" {
		middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "OTP verified successfully"})
		return
	}

	if len(req.NewPassword) < MinPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
		return
	}
	if len(req.NewPassword) > MaxPasswordBytes {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	table := "student"
	if entry.UserType == models.UserAdmin {
		table = "admin"
	}
	res, err := h.db.ExecContext(ctx, "UPDATE "+table+" SET password_hash = $1 WHERE id = $2", hash, entry.UserID)
	if err != nil {
		slog.Error("failed to update password", "user_type", entry.UserType, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Account not found")
		return
	}

	// The code is single use and old sessions die with the old password
	if err := h.codes.Delete(ctx, entry.Email); err != nil {
		slog.Error("failed to consume reset code", "error", err)
	}
	if err := h.sessions.DeleteUser(ctx, entry.UserType, entry.UserID); err != nil {
		slog.Error("failed to end sessions after reset", "error", err)
	}

	slog.Info("password reset", "user_type", entry.UserType, "user_id", entry.UserID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Password updated successfully"})
}
