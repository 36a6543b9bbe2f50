// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/sessions"
	"github.com/univen/housing-portal/testutil"
)

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	m := metrics.New()
	store := sessions.NewStore(db, cfg.SessionTTL)
	handler := NewAuthHandler(db, cfg, store, m)

	testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "23032739", Password: "secret123"})
	testutil.CreateTestAdmin(t, db, "admin@demo.com", "admin123")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectSuccess  bool
		expectRedirect string
		expectMessage  string
	}{
		{
			name:           "student login",
			requestBody:    models.LoginRequest{Username: "23032739", Password: "secret123", UserType: "student"},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
			expectRedirect: "/dashboard",
		},
		{
			name:           "admin login is case insensitive on email",
			requestBody:    models.LoginRequest{Username: "Admin@Demo.com", Password: "admin123", UserType: "admin"},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
			expectRedirect: "/admin-dashboard",
		},
		{
			name:           "wrong student password",
			requestBody:    models.LoginRequest{Username: "23032739", Password: "nope", UserType: "student"},
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "Invalid student number or password",
		},
		{
			name:           "unknown student",
			requestBody:    models.LoginRequest{Username: "99999999", Password: "secret123", UserType: "student"},
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "Invalid student number or password",
		},
		{
			name:           "wrong admin password",
			requestBody:    models.LoginRequest{Username: "admin@demo.com", Password: "nope", UserType: "admin"},
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "Invalid admin credentials",
		},
		{
			name:           "missing password",
			requestBody:    models.LoginRequest{Username: "23032739", UserType: "student"},
			expectedStatus: http.StatusBadRequest,
			expectMessage:  "Username and password are required",
		},
		{
			name:           "invalid user type",
			requestBody:    models.LoginRequest{Username: "x", Password: "y", UserType: "guest"},
			expectedStatus: http.StatusBadRequest,
			expectMessage:  "Invalid user type",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if str, ok := tt.requestBody.(string); ok {
				req = httptest.NewRequest("POST", "/api/login", strings.NewReader(str))
			} else {
				req = testutil.MakeRequest("POST", "/api/login", tt.requestBody, nil)
			}
			w := httptest.NewRecorder()

			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if _, ok := tt.requestBody.(string); ok {
				return
			}

			var resp models.LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Success != tt.expectSuccess {
				t.Errorf("Expected success=%v, got %v", tt.expectSuccess, resp.Success)
			}
			if resp.Redirect != tt.expectRedirect {
				t.Errorf("Expected redirect %q, got %q", tt.expectRedirect, resp.Redirect)
			}
			if tt.expectMessage != "" && resp.Message != tt.expectMessage {
				t.Errorf("Expected message %q, got %q", tt.expectMessage, resp.Message)
			}

			var cookie *http.Cookie
			for _, c := range w.Result().Cookies() {
				if c.Name == sessions.CookieName {
					cookie = c
				}
			}
			if tt.expectSuccess {
				if cookie == nil || cookie.Value == "" {
					t.Fatal("Expected session cookie to be set")
				}
				if !cookie.HttpOnly {
					t.Error("Session cookie must be HttpOnly")
				}
				if _, err := store.Lookup(req.Context(), cookie.Value); err != nil {
					t.Errorf("Session not found after login: %v", err)
				}
			} else if cookie != nil {
				t.Error("Did not expect a session cookie on failure")
			}
		})
	}

	if got := promtest.ToFloat64(m.Logins.WithLabelValues("student", "success")); got != 1 {
		t.Errorf("student success logins = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.Logins.WithLabelValues("student", "failure")); got != 3 {
		t.Errorf("student failed logins = %v, want 3", got)
	}
}

func TestLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := sessions.NewStore(db, cfg.SessionTTL)
	handler := NewAuthHandler(db, cfg, store, metrics.New())

	studentID := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1001"})

	t.Run("api logout", func(t *testing.T) {
		token := testutil.CreateTestSession(t, db, "student", studentID)
		req := testutil.WithSession(httptest.NewRequest("POST", "/api/logout", nil), token)
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		if _, err := store.Lookup(req.Context(), token); err != sessions.ErrNoSession {
			t.Errorf("Expected session to be gone, got %v", err)
		}
		cleared := false
		for _, c := range w.Result().Cookies() {
			if c.Name == sessions.CookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("Expected session cookie to be cleared")
		}
	})

	t.Run("browser logout redirects", func(t *testing.T) {
		token := testutil.CreateTestSession(t, db, "student", studentID)
		req := testutil.WithSession(httptest.NewRequest("GET", "/logout", nil), token)
		w := httptest.NewRecorder()

		handler.LogoutRedirect(w, req)

		testutil.AssertStatus(t, w, http.StatusSeeOther)
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("Expected redirect to /, got %q", loc)
		}
		if _, err := store.Lookup(req.Context(), token); err != sessions.ErrNoSession {
			t.Errorf("Expected session to be gone, got %v", err)
		}
	})

	t.Run("logout without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Logout(w, httptest.NewRequest("POST", "/api/logout", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	})
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg, sessions.NewStore(db, cfg.SessionTTL), metrics.New())

	studentID := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "24002372", Gender: "female"})

	t.Run("student", func(t *testing.T) {
		req := asUser(httptest.NewRequest("GET", "/api/me", nil), "student", studentID)
		w := httptest.NewRecorder()

		handler.Me(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Student == nil {
			t.Fatal("Expected student profile")
		}
		if resp.Student.StudentNumber != "24002372" || resp.Student.Gender != "female" {
			t.Errorf("Unexpected profile: %+v", resp.Student)
		}
	})

	t.Run("admin", func(t *testing.T) {
		req := asUser(httptest.NewRequest("GET", "/api/me", nil), "admin", "a1")
		w := httptest.NewRecorder()

		handler.Me(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.UserType != "admin" || resp.Student != nil {
			t.Errorf("Unexpected admin response: %+v", resp)
		}
	})

	t.Run("deleted student", func(t *testing.T) {
		req := asUser(httptest.NewRequest("GET", "/api/me", nil), "student", "gone")
		w := httptest.NewRecorder()

		handler.Me(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
