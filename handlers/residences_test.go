// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/testutil"
	"github.com/xuri/excelize/v2"
)

func TestListResidences(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewResidenceHandler(conn, testutil.GetTestConfig())

	if err := db.SeedResidences(context.Background(), conn); err != nil {
		t.Fatalf("Failed to seed residences: %v", err)
	}

	offCampus := 0
	female := 0
	for _, r := range db.Catalog {
		if !r.OnCampus {
			offCampus++
		}
		if r.ResidenceType == models.ResidenceFemale {
			female++
		}
	}
	offCampus += len(db.DefaultOffCampus)

	tests := []struct {
		name        string
		query       string
		expectCount int
	}{
		{"all", "", len(db.Catalog) + len(db.DefaultOffCampus)},
		{"off campus", "?on_campus=false", offCampus},
		{"on campus", "?on_campus=1", len(db.Catalog) + len(db.DefaultOffCampus) - offCampus},
		{"female", "?type=female", female},
		{"on campus female", "?on_campus=yes&type=female", female},
		{"off campus female", "?on_campus=no&type=female", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ListResidences(w, httptest.NewRequest("GET", "/api/residences"+tt.query, nil))

			testutil.AssertStatus(t, w, http.StatusOK)
			var residences []models.Residence
			testutil.AssertJSON(t, w, &residences)
			if len(residences) != tt.expectCount {
				t.Errorf("Expected %d residences, got %d", tt.expectCount, len(residences))
			}
		})
	}
}

func TestResidenceStats(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewResidenceHandler(conn, testutil.GetTestConfig())

	res := testutil.CreateTestResidence(t, conn, "DBSA Male", "M-1", true, 3)
	for _, n := range []string{"1", "2", "3"} {
		sid := testutil.CreateTestStudent(t, conn, testutil.StudentFixture{Number: n})
		status := models.StatusAccepted
		if n == "3" {
			status = models.StatusApproved
		}
		testutil.CreateTestApplication(t, conn, sid, res, status)
	}

	w := httptest.NewRecorder()
	handler.Stats(w, asUser(httptest.NewRequest("GET", "/api/residences/stats", nil), "admin", "a1"))

	testutil.AssertStatus(t, w, http.StatusOK)
	var stats []models.ResidenceStats
	testutil.AssertJSON(t, w, &stats)

	if len(stats) != 1+len(db.DefaultOffCampus) {
		t.Fatalf("Expected default off-campus residences to be added, got %d rows", len(stats))
	}
	for _, s := range stats {
		want := 0
		if s.ID == res {
			want = 2
		}
		if s.AcceptedCount != want {
			t.Errorf("%s: accepted_count %d, want %d", s.ResidenceName, s.AcceptedCount, want)
		}
	}
}

func TestSyncOffCampus(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewResidenceHandler(conn, testutil.GetTestConfig())

	body := models.OffCampusSyncRequest{ResidenceNames: []string{"Grand Royale", " ", "New Place"}}

	var first models.OffCampusSyncResponse
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.SyncOffCampus(w, testutil.MakeRequest("POST", "/api/offcampus/sync", body, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.OffCampusSyncResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.IDs) != 2 {
			t.Fatalf("Expected 2 ids (blank skipped), got %v", resp.IDs)
		}
		if i == 0 {
			first = resp
		} else if resp.IDs[0] != first.IDs[0] || resp.IDs[1] != first.IDs[1] {
			t.Errorf("Sync is not idempotent: %v then %v", first.IDs, resp.IDs)
		}
	}

	if n := countRows(t, conn, "SELECT COUNT(*) FROM residence WHERE on_campus = $1", false); n != 2 {
		t.Errorf("Expected 2 off-campus residences, got %d", n)
	}
}

func TestExportAccepted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewResidenceHandler(conn, testutil.GetTestConfig())

	off := testutil.CreateTestResidence(t, conn, "Grand Royale", "", false, 10)
	empty := testutil.CreateTestResidence(t, conn, "Simeka Heights", "", false, 10)
	on := testutil.CreateTestResidence(t, conn, "DBSA Male", "M-1", true, 3)

	zulu := testutil.CreateTestStudent(t, conn, testutil.StudentFixture{Number: "1001"})
	conn.Exec("UPDATE student SET first_name = 'Zanele', last_name = 'Zulu' WHERE id = $1", zulu)
	abe := testutil.CreateTestStudent(t, conn, testutil.StudentFixture{Number: "1002"})
	conn.Exec("UPDATE student SET first_name = 'Abe', last_name = 'Adams' WHERE id = $1", abe)
	pending := testutil.CreateTestStudent(t, conn, testutil.StudentFixture{Number: "1003"})

	testutil.CreateTestApplication(t, conn, zulu, off, models.StatusAccepted)
	testutil.CreateTestApplication(t, conn, abe, off, models.StatusAccepted)
	testutil.CreateTestApplication(t, conn, pending, off, models.StatusPending)

	export := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/offcampus/"+id+"/accepted/export", nil)
		req.SetPathValue("residence_id", id)
		w := httptest.NewRecorder()
		handler.ExportAccepted(w, asUser(req, "admin", "a1"))
		return w
	}

	t.Run("accepted students", func(t *testing.T) {
		w := export(off)

		testutil.AssertStatus(t, w, http.StatusOK)
		if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
			t.Errorf("Unexpected content type %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "accepted_Grand_Royale.xlsx") {
			t.Errorf("Unexpected disposition %q", cd)
		}

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("Export is not a workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows(AcceptedSheet)
		if err != nil {
			t.Fatalf("Failed to read rows: %v", err)
		}
		// title, blank, header, two students
		if len(rows) != 5 {
			t.Fatalf("Expected 5 rows, got %d: %v", len(rows), rows)
		}
		if rows[0][0] != "Accepted Students - Grand Royale" {
			t.Errorf("Unexpected title %q", rows[0][0])
		}
		if rows[3][0] != "Abe Adams" || rows[4][0] != "Zanele Zulu" {
			t.Errorf("Expected students sorted by last name, got %v / %v", rows[3], rows[4])
		}
		if rows[3][1] != "1002" {
			t.Errorf("Expected student number column, got %v", rows[3])
		}
	})

	t.Run("no accepted students", func(t *testing.T) {
		w := export(empty)

		testutil.AssertStatus(t, w, http.StatusOK)
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("Export is not a workbook: %v", err)
		}
		defer f.Close()
		v, _ := f.GetCellValue(AcceptedSheet, "A4")
		if v != "No accepted students for this residence yet." {
			t.Errorf("Unexpected placeholder %q", v)
		}
	})

	for name, id := range map[string]string{"on-campus residence": on, "unknown residence": "missing"} {
		t.Run(name, func(t *testing.T) {
			w := export(id)
			testutil.AssertStatus(t, w, http.StatusNotFound)
		})
	}
}
