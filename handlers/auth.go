// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/sessions"
)

type AuthHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *sessions.Store
	metrics  *metrics.Metrics
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config, store *sessions.Store, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, sessions: store, metrics: m}
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, status int, userType, message string) {
	h.metrics.Logins.WithLabelValues(userType, "failure").Inc()
	middleware.JSONResponse(w, status, models.LoginResponse{Success: false, Message: message})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.loginFailed(w, http.StatusBadRequest, req.UserType, "Username and password are required")
		return
	}

	var userID, hash, redirect, failure string
	switch req.UserType {
	case models.UserStudent:
		redirect = "/dashboard"
		failure = "Invalid student number or password"
		err := h.db.QueryRowContext(r.Context(),
			"SELECT id, password_hash FROM student WHERE student_number = $1",
			req.Username,
		).Scan(&userID, &hash)
		if err != nil && err != sql.ErrNoRows {
			slog.Error("failed to query student", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	case models.UserAdmin:
		redirect = "/admin-dashboard"
		failure = "Invalid admin credentials"
		err := h.db.QueryRowContext(r.Context(),
			"SELECT id, password_hash FROM admin WHERE LOWER(email) = $1",
			strings.ToLower(req.Username),
		).Scan(&userID, &hash)
		if err != nil && err != sql.ErrNoRows {
			slog.Error("failed to query admin", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	default:
		h.loginFailed(w, http.StatusBadRequest, "unknown", "Invalid user type")
		return
	}

	if userID == "" || auth.CheckPassword(hash, req.Password) != nil {
		slog.Info("login rejected", "user_type", req.UserType, "username", req.Username)
		h.loginFailed(w, http.StatusUnauthorized, req.UserType, failure)
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.UserType, userID)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	sessions.SetCookie(w, sess, h.cfg.CookieSecure)
	h.metrics.Logins.WithLabelValues(req.UserType, "success").Inc()
	slog.Info("login succeeded", "user_type", req.UserType, "user_id", userID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Success:  true,
		Redirect: redirect,
		Message:  "Login successful",
	})
}

func (h *AuthHandler) endSession(w http.ResponseWriter, r *http.Request) {
	if token := sessions.TokenFromRequest(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}
	sessions.ClearCookie(w, h.cfg.CookieSecure)
	middleware.NoStore(w)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// LogoutRedirect handles GET /logout
func (h *AuthHandler) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.Principal(r.Context())

	resp := models.MeResponse{UserType: sess.UserType, UserID: sess.UserID}
	if sess.UserType == models.UserStudent {
		student, err := getStudent(r.Context(), h.db, sess.UserID)
		if errors.Is(err, errStudentNotFound) {
			// Account removed while the session was live
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err != nil {
			slog.Error("failed to load student", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		resp.Student = &student
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
