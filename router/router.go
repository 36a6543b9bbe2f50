// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/handlers"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/sessions"
)

// Deps are the long-lived services shared by every handler.
type Deps struct {
	Sessions *sessions.Store
	Codes    resetstore.Store
	Mail     mailer.Mailer
	Metrics  *metrics.Metrics
	Limiter  *middleware.RateLimiter
}

// NewRouter registers every route and wraps the mux in the request id,
// metrics and CORS middleware.
func NewRouter(db *sql.DB, cfg cliparse.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, deps.Sessions, deps.Metrics)
	residenceHandler := handlers.NewResidenceHandler(db, cfg)
	appHandler := handlers.NewApplicationHandler(db, cfg, deps.Mail, deps.Metrics)
	adminHandler := handlers.NewAdminHandler(db, cfg, deps.Mail, deps.Metrics)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, deps.Codes, deps.Sessions, deps.Mail, deps.Metrics)

	student := middleware.RequireRole(deps.Sessions, models.UserStudent)
	admin := middleware.RequireRole(deps.Sessions, models.UserAdmin)
	anyone := middleware.RequireRole(deps.Sessions)
	limited := deps.Limiter.Limit

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Sessions
	mux.HandleFunc("POST /api/login", middleware.WithLogging(limited(authHandler.Login)))
	mux.HandleFunc("POST /api/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /logout", middleware.WithLogging(authHandler.LogoutRedirect))
	mux.HandleFunc("GET /api/me", middleware.WithLogging(anyone(authHandler.Me)))

	// Password reset (public)
	mux.HandleFunc("POST /api/password-reset/request", middleware.WithLogging(limited(resetHandler.RequestReset)))
	mux.HandleFunc("POST /api/password-reset/verify", middleware.WithLogging(limited(resetHandler.VerifyReset)))

	// Residences
	mux.HandleFunc("GET /api/residences", middleware.WithLogging(residenceHandler.ListResidences))
	mux.HandleFunc("GET /api/residences/stats", middleware.WithLogging(admin(residenceHandler.Stats)))
	mux.HandleFunc("POST /api/offcampus/sync", middleware.WithLogging(admin(residenceHandler.SyncOffCampus)))
	mux.HandleFunc("GET /api/offcampus/{residence_id}/accepted/export", middleware.WithLogging(admin(residenceHandler.ExportAccepted)))

	// Applications (student)
	mux.HandleFunc("POST /api/applications", middleware.WithLogging(student(appHandler.CreateApplications)))
	mux.HandleFunc("GET /api/applications/me", middleware.WithLogging(student(appHandler.GetMyApplications)))
	mux.HandleFunc("POST /api/applications/{id}/accept", middleware.WithLogging(student(appHandler.AcceptOffer)))
	mux.HandleFunc("POST /api/applications/{id}/reject_offer", middleware.WithLogging(student(appHandler.RejectOffer)))

	// Applications (admin or owner)
	mux.HandleFunc("GET /api/applications/{student_id}", middleware.WithLogging(anyone(appHandler.GetStudentApplications)))

	// Administration
	mux.HandleFunc("GET /api/applications", middleware.WithLogging(admin(appHandler.GetAllApplications)))
	mux.HandleFunc("POST /api/applications/{id}/approve", middleware.WithLogging(admin(appHandler.Approve)))
	mux.HandleFunc("POST /api/applications/{id}/reject", middleware.WithLogging(admin(appHandler.Reject)))
	mux.HandleFunc("GET /api/students", middleware.WithLogging(admin(adminHandler.ListStudents)))
	mux.HandleFunc("POST /api/process", middleware.WithLogging(admin(adminHandler.Process)))
	mux.HandleFunc("POST /api/email/test", middleware.WithLogging(admin(adminHandler.EmailTest)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("housing-portal API v1"))
	})

	return middleware.WithRequestID(middleware.WithMetrics(deps.Metrics, middleware.CORS(mux)))
}
