// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/db"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie must match sessions.CookieName.
const SessionCookie = "housing_session"

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// Each call gets its own database, so tests can run in parallel.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               5000,
		DatabaseURL:        ":memory:",
		DatabaseType:       cliparse.DatabaseSQLite,
		SessionTTL:         time.Hour,
		OTPTTL:             5 * time.Minute,
		AdminEmail:         "admin@demo.com",
		StudentEmailDomain: "mvula.univen.ac.za",
		SMTP:               cliparse.SMTPConfig{Port: 587, From: "no-reply@example.com"},
		ResetStore:         cliparse.ResetStoreSQL,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		IPHashSalt:         "test-salt",
	}
}

// hashForTest uses the minimum bcrypt cost to keep tests fast.
func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateTestResidence inserts a residence and returns its ID
func CreateTestResidence(t *testing.T, conn *sql.DB, name, block string, onCampus bool, rooms int) string {
	t.Helper()

	resType := "offcamp"
	if onCampus {
		resType = "male"
	}

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO residence (id, residence_name, block, on_campus, residence_type, available_rooms, restrictions)
		VALUES ($1, $2, $3, $4, $5, $6, '')
	`, id, name, block, onCampus, resType, rooms)
	if err != nil {
		t.Fatalf("Failed to create test residence: %v", err)
	}

	return id
}

// StudentFixture overrides the defaults used by CreateTestStudent.
type StudentFixture struct {
	Number   string
	Password string
	Email    string
	Gender   string
	GPA      float64
	Distance float64
}

// CreateTestStudent inserts a student and returns its ID. Email defaults to
// {number}@mvula.univen.ac.za and password to "password1".
func CreateTestStudent(t *testing.T, conn *sql.DB, f StudentFixture) string {
	t.Helper()

	if f.Password == "" {
		f.Password = "password1"
	}
	if f.Email == "" {
		f.Email = f.Number + "@mvula.univen.ac.za"
	}
	if f.Gender == "" {
		f.Gender = "male"
	}

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO student (id, student_number, password_hash, first_name, last_name, email, gender, program, gpa, distance, created_at)
		VALUES ($1, $2, $3, 'Test', $4, $5, $6, 'Computer Science', $7, $8, $9)
	`, id, f.Number, hashForTest(t, f.Password), "Student"+f.Number, f.Email, f.Gender, f.GPA, f.Distance, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test student: %v", err)
	}

	return id
}

// CreateTestAdmin inserts an admin account and returns its ID
func CreateTestAdmin(t *testing.T, conn *sql.DB, email, password string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO admin (id, email, password_hash)
		VALUES ($1, $2, $3)
	`, id, email, hashForTest(t, password))
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}

	return id
}

// CreateTestApplication inserts an application dated now and returns its ID
func CreateTestApplication(t *testing.T, conn *sql.DB, studentID, residenceID, status string) string {
	t.Helper()
	return CreateTestApplicationAt(t, conn, studentID, residenceID, status, time.Now().UTC())
}

// CreateTestApplicationAt inserts an application with an explicit apply date
func CreateTestApplicationAt(t *testing.T, conn *sql.DB, studentID, residenceID, status string, at time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO application (id, student_id, residence_id, status, apply_date)
		VALUES ($1, $2, $3, $4, $5)
	`, id, studentID, residenceID, status, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test application: %v", err)
	}

	return id
}

// ApplicationStatus reads the current status of an application
func ApplicationStatus(t *testing.T, conn *sql.DB, id string) string {
	t.Helper()

	var status string
	if err := conn.QueryRow("SELECT status FROM application WHERE id = $1", id).Scan(&status); err != nil {
		t.Fatalf("Failed to read application status: %v", err)
	}
	return status
}

// CreateTestSession inserts a one-hour session and returns its token
func CreateTestSession(t *testing.T, conn *sql.DB, userType, userID string) string {
	t.Helper()

	token, _ := auth.GenerateSessionToken()
	_, err := conn.Exec(`
		INSERT INTO user_session (token, user_type, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, userType, userID, time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// WithSession attaches the session cookie to req
func WithSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	return req
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
