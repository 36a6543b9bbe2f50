// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apitest runs the full API behind an httptest server for
// client-side tests.
package apitest

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/router"
	"github.com/univen/housing-portal/sessions"
	"github.com/univen/housing-portal/testutil"
)

type Server struct {
	*httptest.Server
	DB   *sql.DB
	Mail *mailer.Recorder
}

// New starts a server over a fresh in-memory database holding the
// residence catalog. It is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	if err := db.SeedResidences(context.Background(), conn); err != nil {
		t.Fatalf("Failed to seed residences: %v", err)
	}

	cfg := testutil.GetTestConfig()
	m := metrics.New()
	mail := &mailer.Recorder{}
	deps := router.Deps{
		Sessions: sessions.NewStore(conn, cfg.SessionTTL),
		Codes:    resetstore.NewSQLStore(conn),
		Mail:     mail,
		Metrics:  m,
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.IPHashSalt, m),
	}

	srv := httptest.NewServer(router.NewRouter(conn, cfg, deps))
	t.Cleanup(srv.Close)

	return &Server{Server: srv, DB: conn, Mail: mail}
}

// Student creates a student with password "password1" and returns its ID.
func (s *Server) Student(t *testing.T, number string) string {
	t.Helper()
	return testutil.CreateTestStudent(t, s.DB, testutil.StudentFixture{Number: number})
}

// Admin creates an admin account and returns its ID.
func (s *Server) Admin(t *testing.T, email, password string) string {
	t.Helper()
	return testutil.CreateTestAdmin(t, s.DB, email, password)
}
