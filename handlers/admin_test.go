// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/testutil"
)

func TestProcess(t *testing.T) {
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		method      string
		expectFirst []string // student numbers approved, in order
	}{
		// low-GPA student applied first and lives furthest away
		{"gpa", "gpa", []string{"A", "B"}},
		{"distance", "distance", []string{"C", "B"}},
		{"first come", "first_come", []string{"C", "A"}},
		{"method is case insensitive", " GPA ", []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			cfg := testutil.GetTestConfig()
			mail := &mailer.Recorder{}
			handler := NewAdminHandler(db, cfg, mail, metrics.New())

			res := testutil.CreateTestResidence(t, db, "Grand Royale", "", false, 2)
			students := map[string]string{
				"A": testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "A", GPA: 3.9, Distance: 10}),
				"B": testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "B", GPA: 3.5, Distance: 20}),
				"C": testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "C", GPA: 2.1, Distance: 50}),
			}
			appByStudent := map[string]string{
				"C": testutil.CreateTestApplicationAt(t, db, students["C"], res, models.StatusPending, base),
				"A": testutil.CreateTestApplicationAt(t, db, students["A"], res, models.StatusPending, base.Add(time.Hour)),
				"B": testutil.CreateTestApplicationAt(t, db, students["B"], res, models.StatusPending, base.Add(2*time.Hour)),
			}

			req := testutil.MakeRequest("POST", "/api/process", models.ProcessRequest{Method: tt.method}, nil)
			w := httptest.NewRecorder()

			handler.Process(w, asUser(req, "admin", "a1"))

			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.ProcessResponse
			testutil.AssertJSON(t, w, &resp)

			want := []string{appByStudent[tt.expectFirst[0]], appByStudent[tt.expectFirst[1]]}
			if !slices.Equal(resp.ApplicationIDs, want) {
				t.Errorf("Expected approvals %v, got %v", want, resp.ApplicationIDs)
			}
			if resp.AcceptedCount != 2 {
				t.Errorf("Expected accepted_count 2, got %d", resp.AcceptedCount)
			}
			if resp.Method != strings.ToLower(strings.TrimSpace(tt.method)) {
				t.Errorf("Unexpected method echo %q", resp.Method)
			}

			pending := countRows(t, db, "SELECT COUNT(*) FROM application WHERE status = $1", models.StatusPending)
			if pending != 1 {
				t.Errorf("Expected one application left pending, got %d", pending)
			}
			if len(mail.Sent()) != 2 {
				t.Errorf("Expected 2 approval emails, got %d", len(mail.Sent()))
			}
		})
	}
}

func TestProcess_OneOfferPerStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg, &mailer.Recorder{}, metrics.New())

	first := testutil.CreateTestResidence(t, db, "Grand Royale", "", false, 5)
	second := testutil.CreateTestResidence(t, db, "Simeka Heights", "", false, 5)
	full := testutil.CreateTestResidence(t, db, "Maphula Residence", "", false, 1)

	alice := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1001", GPA: 3.0})
	bob := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1002", GPA: 2.0})
	carol := testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1003", GPA: 4.0})

	aliceFirst := testutil.CreateTestApplication(t, db, alice, first, models.StatusPending)
	aliceSecond := testutil.CreateTestApplication(t, db, alice, second, models.StatusPending)
	// Carol already holds an offer and fills the only room at Maphula
	testutil.CreateTestApplication(t, db, carol, full, models.StatusAccepted)
	carolPending := testutil.CreateTestApplication(t, db, carol, first, models.StatusPending)
	bobFull := testutil.CreateTestApplication(t, db, bob, full, models.StatusPending)

	req := testutil.MakeRequest("POST", "/api/process", models.ProcessRequest{Method: "gpa"}, nil)
	w := httptest.NewRecorder()

	handler.Process(w, asUser(req, "admin", "a1"))

	testutil.AssertStatus(t, w, http.StatusOK)

	approved := 0
	for _, id := range []string{aliceFirst, aliceSecond} {
		if testutil.ApplicationStatus(t, db, id) == models.StatusApproved {
			approved++
		}
	}
	if approved != 1 {
		t.Errorf("Expected exactly one of Alice's applications approved, got %d", approved)
	}
	if status := testutil.ApplicationStatus(t, db, carolPending); status != models.StatusPending {
		t.Errorf("Carol already holds an offer; expected Pending, got %s", status)
	}
	if status := testutil.ApplicationStatus(t, db, bobFull); status != models.StatusPending {
		t.Errorf("Maphula is full; expected Pending, got %s", status)
	}
}

func TestProcess_InvalidMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAdminHandler(db, testutil.GetTestConfig(), &mailer.Recorder{}, metrics.New())

	for _, body := range []interface{}{models.ProcessRequest{Method: "random"}, models.ProcessRequest{}} {
		w := httptest.NewRecorder()
		handler.Process(w, testutil.MakeRequest("POST", "/api/process", body, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}

func TestListStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAdminHandler(db, testutil.GetTestConfig(), &mailer.Recorder{}, metrics.New())

	testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "2002"})
	testutil.CreateTestStudent(t, db, testutil.StudentFixture{Number: "1001"})

	w := httptest.NewRecorder()
	handler.ListStudents(w, httptest.NewRequest("GET", "/api/students", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "password") {
		t.Error("Password hashes must never be serialised")
	}
	var students []models.Student
	testutil.AssertJSON(t, w, &students)
	if len(students) != 2 || students[0].StudentNumber != "1001" {
		t.Errorf("Expected two students ordered by number, got %+v", students)
	}
}

func TestEmailTest(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mailErr        error
		expectedStatus int
		expectTo       string
	}{
		{"explicit recipient", models.EmailTestRequest{To: "ops@example.com"}, nil, http.StatusOK, "ops@example.com"},
		{"defaults to sender", nil, nil, http.StatusOK, "no-reply@example.com"},
		{"smtp failure", models.EmailTestRequest{To: "ops@example.com"}, errSMTPDown, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			mail := &mailer.Recorder{Err: tt.mailErr}
			handler := NewAdminHandler(db, testutil.GetTestConfig(), mail, metrics.New())

			w := httptest.NewRecorder()
			handler.EmailTest(w, testutil.MakeRequest("POST", "/api/email/test", tt.body, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp models.EmailTestResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.To != tt.expectTo {
				t.Errorf("Expected to=%q, got %q", tt.expectTo, resp.To)
			}
			if msg, ok := mail.Last(); !ok || msg.Subject != "SMTP Test" {
				t.Errorf("Expected test email, got %+v", msg)
			}
		})
	}
}
