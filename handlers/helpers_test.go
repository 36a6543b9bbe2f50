// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/sessions"
)

// asUser attaches a principal the way RequireRole would.
func asUser(req *http.Request, userType, userID string) *http.Request {
	sess := sessions.Session{UserType: userType, UserID: userID}
	return req.WithContext(middleware.WithPrincipal(req.Context(), sess))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (body %q)", err, w.Body.String())
	}
	return resp.Error
}

func countRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

var errSMTPDown = errors.New("smtp down")

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}
