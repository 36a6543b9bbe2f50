// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/sessions"
	"github.com/univen/housing-portal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *sql.DB, *mailer.Recorder) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	m := metrics.New()
	mail := &mailer.Recorder{}
	deps := Deps{
		Sessions: sessions.NewStore(db, cfg.SessionTTL),
		Codes:    resetstore.NewSQLStore(db),
		Mail:     mail,
		Metrics:  m,
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.IPHashSalt, m),
	}
	return NewRouter(db, cfg, deps), db, mail
}

func TestHealthEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "housing-portal API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `route="GET /health"`) {
		t.Error("Expected request metrics labelled by route pattern")
	}
}

func TestRouteAuthorization(t *testing.T) {
	mux, db, _ := newTestRouter(t)

	studentID := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1001"})
	adminID := testutil.CreateTestAdmin(t, db, "admin@demo.com", "admin123")
	studentToken := testutil.CreateTestSession(t, db, models.UserStudent, studentID)
	adminToken := testutil.CreateTestSession(t, db, models.UserAdmin, adminID)

	testCases := []struct {
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		// Public
		{"GET", "/api/residences", "", http.StatusOK},

		// No session
		{"GET", "/api/me", "", http.StatusUnauthorized},
		{"POST", "/api/applications", "", http.StatusUnauthorized},
		{"GET", "/api/applications/me", "", http.StatusUnauthorized},
		{"GET", "/api/applications", "", http.StatusUnauthorized},
		{"POST", "/api/process", "", http.StatusUnauthorized},
		{"GET", "/api/students", "", http.StatusUnauthorized},

		// Wrong role
		{"GET", "/api/applications", studentToken, http.StatusUnauthorized},
		{"GET", "/api/students", studentToken, http.StatusUnauthorized},
		{"GET", "/api/residences/stats", studentToken, http.StatusUnauthorized},
		{"POST", "/api/email/test", studentToken, http.StatusUnauthorized},
		{"GET", "/api/applications/me", adminToken, http.StatusUnauthorized},
		{"POST", "/api/applications/x/accept", adminToken, http.StatusUnauthorized},

		// Right role
		{"GET", "/api/me", studentToken, http.StatusOK},
		{"GET", "/api/me", adminToken, http.StatusOK},
		{"GET", "/api/applications/me", studentToken, http.StatusOK},
		{"GET", "/api/applications/" + studentID, studentToken, http.StatusOK},
		{"GET", "/api/applications/other", studentToken, http.StatusForbidden},
		{"GET", "/api/applications/" + studentID, adminToken, http.StatusOK},
		{"GET", "/api/applications", adminToken, http.StatusOK},
		{"GET", "/api/students", adminToken, http.StatusOK},
		{"GET", "/api/residences/stats", adminToken, http.StatusOK},
		{"POST", "/api/applications/missing/approve", adminToken, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req = testutil.WithSession(req, tc.token)
			}
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d, got %d (%s)", tc.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusUnauthorized {
				var resp models.ErrorResponse
				json.Unmarshal(w.Body.Bytes(), &resp)
				if resp.Error != "Unauthorized" {
					t.Errorf("Expected Unauthorized error body, got %q", w.Body.String())
				}
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	// Test that unsupported methods on defined routes return 405
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},             // Only GET is defined
		{"DELETE", "/api/applications"}, // GET and POST are defined
		{"GET", "/api/process"},         // Only POST is defined
		{"PUT", "/api/login"},           // Only POST is defined
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405, got %d", w.Code)
			}
		})
	}
}

// TestStudentFlow drives login, submission and listing through the full
// middleware stack with a real cookie.
func TestStudentFlow(t *testing.T) {
	mux, db, mail := newTestRouter(t)

	testutil.CreateTestResidence(t, db, "DBSA Male", "M-1", true, 3)
	testutil.CreateTestResidence(t, db, "Grand Royale", "", false, 10)
	testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "23032739", Password: "secret123"})

	body, _ := json.Marshal(models.LoginRequest{Username: "23032739", Password: "secret123", UserType: models.UserStudent})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/login", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", w.Code, w.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessions.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("Expected session cookie")
	}

	body = []byte(`{"residences":[{"residence_name":"DBSA Male","block":"M-1"},{"residence_name":"Grand Royale","block":""}]}`)
	req := httptest.NewRequest("POST", "/api/applications", bytes.NewReader(body))
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Submit failed: %d %s", w.Code, w.Body.String())
	}
	if len(mail.Sent()) != 1 {
		t.Errorf("Expected a submission email, got %d", len(mail.Sent()))
	}

	req = httptest.NewRequest("GET", "/api/applications/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	var apps []models.StudentApplication
	if err := json.Unmarshal(w.Body.Bytes(), &apps); err != nil {
		t.Fatalf("Failed to decode applications: %v", err)
	}
	if len(apps) != 2 {
		t.Errorf("Expected 2 applications, got %d", len(apps))
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Expected authenticated responses to be no-store, got %q", cc)
	}

	req = httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(cookie)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	m := metrics.New()
	deps := Deps{
		Sessions: sessions.NewStore(db, cfg.SessionTTL),
		Codes:    resetstore.NewSQLStore(db),
		Mail:     &mailer.Recorder{},
		Metrics:  m,
		Limiter:  middleware.NewRateLimiter(0.001, 2, cfg.IPHashSalt, m),
	}
	mux := NewRouter(db, cfg, deps)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(models.LoginRequest{Username: "x", Password: "y", UserType: models.UserStudent})
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/login", bytes.NewReader(body)))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusUnauthorized || codes[1] != http.StatusUnauthorized {
		t.Errorf("Expected the first two attempts to reach the handler, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected third attempt to be rate limited, got %d", codes[2])
	}
}
