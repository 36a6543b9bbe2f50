// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/models"
)

// DefaultOffCampusRooms is the capacity given to off-campus residences that
// are created on demand.
const DefaultOffCampusRooms = 10

// Catalog is the residence list installed on a fresh database.
var Catalog = []models.Residence{
	{ResidenceName: "DBSA Male", Block: "M-1", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Male", Block: "M-2", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Male", Block: "M-3", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Male", Block: "M-4", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "DBSA Male", Block: "M-5", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "DBSA Male", Block: "M-6", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "DBSA Male", Block: "M-7", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "DBSA Male", Block: "M-8", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},

	{ResidenceName: "New Male", Block: "A West", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "New Male", Block: "B West", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "New Male", Block: "A East", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3, Restrictions: "nursing only"},
	{ResidenceName: "New Male", Block: "B East", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},

	{ResidenceName: "F3", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},

	{ResidenceName: "Lost City Boys", Block: "Ground Floor", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},
	{ResidenceName: "Lost City Boys", Block: "First Floor", OnCampus: true, ResidenceType: models.ResidenceMale, AvailableRooms: 3},

	{ResidenceName: "DBSA Female", Block: "F-1", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Female", Block: "F-2", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Female", Block: "F-3", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3, Restrictions: "first year only"},
	{ResidenceName: "DBSA Female", Block: "F-4", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},
	{ResidenceName: "DBSA Female", Block: "F-5", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},
	{ResidenceName: "DBSA Female", Block: "F-6", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},
	{ResidenceName: "DBSA Female", Block: "F-7", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},
	{ResidenceName: "DBSA Female", Block: "F-8", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},

	{ResidenceName: "New Female", Block: "A South", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 2},
	{ResidenceName: "New Female", Block: "B South", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 2},
	{ResidenceName: "New Female", Block: "A North", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 2},
	{ResidenceName: "New Female", Block: "B North", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 2, Restrictions: "nursing only"},

	{ResidenceName: "Lost City Girls", Block: "Ground Floor", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},
	{ResidenceName: "Lost City Girls", Block: "First Floor", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},

	{ResidenceName: "F5", OnCampus: true, ResidenceType: models.ResidenceFemale, AvailableRooms: 3},

	{ResidenceName: "Thohoyandou Off-Campus", ResidenceType: models.ResidenceOffCamp, AvailableRooms: DefaultOffCampusRooms},
}

// DefaultOffCampus lists the private residences offered on the off-campus page.
var DefaultOffCampus = []string{
	"M Sherly Sibasa",
	"Muthathe Residence",
	"Simeka Heights",
	"Maphula Residence",
	"Emlanjeni Residence",
	"Grand Royale",
	"589 Residence",
}

// OffCampusResidence builds the catalog entry for a named private residence.
func OffCampusResidence(name string) models.Residence {
	return models.Residence{
		ResidenceName:  strings.TrimSpace(name),
		ResidenceType:  models.ResidenceOffCamp,
		AvailableRooms: DefaultOffCampusRooms,
	}
}

// SeedResidences installs the catalog and the default off-campus list.
// Existing rows are left untouched.
func SeedResidences(ctx context.Context, q Querier) error {
	for _, r := range Catalog {
		if _, err := UpsertResidence(ctx, q, r); err != nil {
			return fmt.Errorf("failed to seed %s %s: %w", r.ResidenceName, r.Block, err)
		}
	}
	_, err := UpsertOffCampus(ctx, q, DefaultOffCampus)
	return err
}

// UpsertOffCampus upserts each named off-campus residence and returns the
// ids in input order. Blank names are skipped.
func UpsertOffCampus(ctx context.Context, q Querier, names []string) ([]string, error) {
	ids := []string{}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		id, err := UpsertResidence(ctx, q, OffCampusResidence(name))
		if err != nil {
			return nil, fmt.Errorf("failed to upsert %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet.
// An empty email or password is a no-op.
func SeedAdmin(ctx context.Context, q Querier, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	var existing string
	err := q.QueryRowContext(ctx, "SELECT id FROM admin WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO admin (id, email, password_hash) VALUES ($1, $2, $3)",
		id, email, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	slog.Info("admin account created", "email", email)
	return nil
}

type demoStudent struct {
	number, password, first, last, email, phone, gender, program string
	year                                                         int
	gpa, distance                                                float64
}

var demoStudents = []demoStudent{
	{"23032739", "pass1", "Amokelane", "Bele", "23032739@mvula.univen.ac.za", "0711111111", "male", "Computer Science", 1, 3.60, 12.5},
	{"24064940", "pass2", "Dakalo", "Makhavhu", "24064940@mvula.univen.ac.za", "0712222222", "male", "Engineering", 2, 3.10, 5.2},
	{"24002372", "pass3", "Katlego", "Mamphekgo", "24002372@mvula.univen.ac.za", "0713333333", "female", "Nursing", 1, 3.85, 20.0},
	{"24039890", "pass4", "Tsetselelo", "Masangu", "24039890@mvula.univen.ac.za", "0714444444", "male", "Science", 1, 2.80, 2.1},
	{"22008058", "pass5", "Phumlani", "Mbatha", "22008058@mvula.univen.ac.za", "0715555555", "male", "Nursing", 2, 3.20, 8.3},
	{"24037121", "pass6", "Survive", "Motupa", "24037121@mvula.univen.ac.za", "0716666666", "male", "Education", 1, 3.00, 18.4},
	{"24078674", "pass8", "Siphesihle", "Phakathi", "24078674@mvula.univen.ac.za", "0718888888", "female", "Engineering", 1, 2.95, 15.6},
	{"24001435", "pass9", "Mulungisi", "Rikhotso", "24001435@mvula.univen.ac.za", "0719999999", "male", "Arts", 2, 3.40, 9.9},
	{"24007589", "pass11", "Mutangwa", "Rambuda", "24007589@mvula.univen.ac.za", "0711212121", "female", "Business", 1, 3.25, 6.6},
}

// SeedDemoStudents inserts a handful of demo accounts. Students whose number
// is already present are skipped.
func SeedDemoStudents(ctx context.Context, q Querier) error {
	for _, s := range demoStudents {
		var existing string
		err := q.QueryRowContext(ctx, "SELECT id FROM student WHERE student_number = $1", s.number).Scan(&existing)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to look up student: %w", err)
		}

		hash, err := auth.HashPassword(s.password)
		if err != nil {
			return err
		}
		id, err := auth.GenerateID(16)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO student (id, student_number, password_hash, first_name, last_name, email, phone, gender, program, year_of_study, gpa, distance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, id, s.number, hash, s.first, s.last, s.email, s.phone, s.gender, s.program, s.year, s.gpa, s.distance)
		if err != nil {
			return fmt.Errorf("failed to insert demo student %s: %w", s.number, err)
		}
	}

	slog.Info("demo students seeded", "count", len(demoStudents))
	return nil
}
