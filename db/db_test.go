// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/univen/housing-portal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return conn
}

func TestCreateSchema_Mock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS residence")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateSchema_MockError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("disk full"))

	if err := CreateSchema(conn); err == nil {
		t.Fatal("expected error from CreateSchema")
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("second CreateSchema() error = %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestNormalizeBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"M5", "M-5"},
		{"M 5", "M-5"},
		{"M-5", "M-5"},
		{"f12", "f-12"},
		{" A West ", "A West"},
		{"", ""},
		{"Ground Floor", "Ground Floor"},
	}

	for _, tt := range tests {
		if got := NormalizeBlock(tt.in); got != tt.want {
			t.Errorf("NormalizeBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("pq unique violation not detected")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("pq foreign key violation reported as unique")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique")
	}

	conn := openTestDB(t)
	insert := `INSERT INTO admin (id, email, password_hash) VALUES ($1, $2, $3)`
	if _, err := conn.Exec(insert, "a1", "admin@demo.com", "x"); err != nil {
		t.Fatal(err)
	}
	_, err := conn.Exec(insert, "a2", "admin@demo.com", "x")
	if err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("sqlite unique violation not detected: %v", err)
	}
}

func TestUpsertResidence(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	r := models.Residence{ResidenceName: "Grand Royale", ResidenceType: models.ResidenceOffCamp, AvailableRooms: 10}
	id1, err := UpsertResidence(ctx, conn, r)
	if err != nil {
		t.Fatalf("UpsertResidence() error = %v", err)
	}
	id2, err := UpsertResidence(ctx, conn, r)
	if err != nil {
		t.Fatalf("second UpsertResidence() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert created a second row: %s != %s", id1, id2)
	}

	got, err := GetResidence(ctx, conn, id1)
	if err != nil {
		t.Fatal(err)
	}
	if got.OnCampus || got.AvailableRooms != 10 {
		t.Errorf("unexpected residence %+v", got)
	}

	if _, err := GetResidence(ctx, conn, "missing"); !errors.Is(err, ErrResidenceNotFound) {
		t.Errorf("GetResidence(missing) error = %v", err)
	}
}

func TestFindResidence(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	if err := SeedResidences(ctx, conn); err != nil {
		t.Fatalf("SeedResidences() error = %v", err)
	}

	tests := []struct {
		name      string
		residence string
		block     string
		wantBlock string
		wantErr   bool
	}{
		{"exact block", "DBSA Male", "M-5", "M-5", false},
		{"shorthand block", "DBSA Male", "M5", "M-5", false},
		{"named block", "New Female", "A North", "A North", false},
		{"no block residence", "F3", "", "", false},
		{"unknown block falls back to name", "F5", "X", "", false},
		{"off-campus", "Grand Royale", "", "", false},
		{"unknown", "Nowhere", "", "", true},
		{"blank", "  ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FindResidence(ctx, conn, tt.residence, tt.block)
			if tt.wantErr {
				if !errors.Is(err, ErrResidenceNotFound) {
					t.Errorf("expected ErrResidenceNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindResidence() error = %v", err)
			}
			if r.ResidenceName != tt.residence || r.Block != tt.wantBlock {
				t.Errorf("FindResidence() = %s/%s, want %s/%s", r.ResidenceName, r.Block, tt.residence, tt.wantBlock)
			}
		})
	}
}

func TestListResidences_Filters(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	if err := SeedResidences(ctx, conn); err != nil {
		t.Fatal(err)
	}

	all, err := ListResidences(ctx, conn, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(Catalog)+len(DefaultOffCampus) {
		t.Errorf("expected %d residences, got %d", len(Catalog)+len(DefaultOffCampus), len(all))
	}

	off := false
	offCampus, err := ListResidences(ctx, conn, &off, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range offCampus {
		if r.OnCampus {
			t.Errorf("on-campus residence %s in off-campus filter", r.ResidenceName)
		}
	}
	if len(offCampus) != len(DefaultOffCampus)+1 {
		t.Errorf("expected %d off-campus residences, got %d", len(DefaultOffCampus)+1, len(offCampus))
	}

	on := true
	female, err := ListResidences(ctx, conn, &on, models.ResidenceFemale)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range female {
		if r.ResidenceType != models.ResidenceFemale || !r.OnCampus {
			t.Errorf("unexpected residence in female filter: %+v", r)
		}
	}
	if len(female) == 0 {
		t.Error("expected female residences")
	}
}

func TestUpsertOffCampus(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	ids, err := UpsertOffCampus(ctx, conn, []string{"Simeka Heights", " ", "Simeka Heights", "New Place"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids (blank skipped), got %d", len(ids))
	}
	if ids[0] != ids[1] {
		t.Error("same name should resolve to the same id")
	}
}

func TestSeedAdmin(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	if err := SeedAdmin(ctx, conn, "", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := SeedAdmin(ctx, conn, "admin@demo.com", "admin123"); err != nil {
		t.Fatal(err)
	}
	if err := SeedAdmin(ctx, conn, "admin@demo.com", "other"); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM admin").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 admin, got %d", count)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	conn := openTestDB(t)

	_, err := conn.Exec(`
		INSERT INTO application (id, student_id, residence_id, status)
		VALUES ($1, $2, $3, $4)
	`, "app1", "no-student", "no-residence", models.StatusPending)
	if err == nil {
		t.Error("expected foreign key violation")
	}
}
