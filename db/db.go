// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var ErrResidenceNotFound = errors.New("residence not found")

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to PostgreSQL (lib/pq) or SQLite (modernc) and verifies the
// connection. SQLite connections are capped at one, so callers must not
// issue a second statement while iterating rows or holding a transaction.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres":
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint on either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

var blockPattern = regexp.MustCompile(`^([A-Za-z]+)[\s-]?([0-9]+)$`)

// NormalizeBlock turns shorthand like "M5" or "M 5" into the stored "M-5".
// Anything else is returned trimmed.
func NormalizeBlock(block string) string {
	block = strings.TrimSpace(block)
	if m := blockPattern.FindStringSubmatch(block); m != nil {
		return m[1] + "-" + m[2]
	}
	return block
}

const residenceColumns = `id, residence_name, block, on_campus, residence_type, available_rooms, restrictions`

type scanner interface {
	Scan(dest ...any) error
}

// ScanResidence reads the columns listed in residenceColumns.
func ScanResidence(row scanner) (models.Residence, error) {
	var r models.Residence
	err := row.Scan(&r.ID, &r.ResidenceName, &r.Block, &r.OnCampus, &r.ResidenceType, &r.AvailableRooms, &r.Restrictions)
	return r, err
}

// ListResidences returns the catalog ordered by name and block, optionally
// filtered by campus flag and residence type.
func ListResidences(ctx context.Context, q Querier, onCampus *bool, residenceType string) ([]models.Residence, error) {
	query := `SELECT ` + residenceColumns + ` FROM residence`
	var clauses []string
	var args []any
	if onCampus != nil {
		args = append(args, *onCampus)
		clauses = append(clauses, fmt.Sprintf("on_campus = $%d", len(args)))
	}
	if residenceType != "" {
		args = append(args, residenceType)
		clauses = append(clauses, fmt.Sprintf("residence_type = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY residence_name, block"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query residences: %w", err)
	}
	defer rows.Close()

	residences := []models.Residence{}
	for rows.Next() {
		r, err := ScanResidence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan residence: %w", err)
		}
		residences = append(residences, r)
	}
	return residences, rows.Err()
}

// GetResidence loads one residence by id.
func GetResidence(ctx context.Context, q Querier, id string) (models.Residence, error) {
	r, err := ScanResidence(q.QueryRowContext(ctx,
		`SELECT `+residenceColumns+` FROM residence WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Residence{}, ErrResidenceNotFound
	}
	if err != nil {
		return models.Residence{}, fmt.Errorf("failed to get residence: %w", err)
	}
	return r, nil
}

// FindResidence resolves a residence by name and block. It tries the exact
// block, then the normalized block, then any block of the named residence.
func FindResidence(ctx context.Context, q Querier, name, block string) (models.Residence, error) {
	name = strings.TrimSpace(name)
	block = strings.TrimSpace(block)
	if name == "" {
		return models.Residence{}, ErrResidenceNotFound
	}

	byBlock := `SELECT ` + residenceColumns + ` FROM residence WHERE residence_name = $1 AND block = $2 LIMIT 1`
	candidates := []string{}
	if block != "" {
		candidates = append(candidates, block)
		if alt := NormalizeBlock(block); alt != block {
			candidates = append(candidates, alt)
		}
	}
	for _, b := range candidates {
		r, err := ScanResidence(q.QueryRowContext(ctx, byBlock, name, b))
		if err == nil {
			return r, nil
		}
		if err != sql.ErrNoRows {
			return models.Residence{}, fmt.Errorf("failed to find residence: %w", err)
		}
	}

	r, err := ScanResidence(q.QueryRowContext(ctx,
		`SELECT `+residenceColumns+` FROM residence WHERE residence_name = $1 ORDER BY block LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return models.Residence{}, ErrResidenceNotFound
	}
	if err != nil {
		return models.Residence{}, fmt.Errorf("failed to find residence: %w", err)
	}
	return r, nil
}

// UpsertResidence returns the id of the residence with the given name and
// block, inserting it first when absent.
func UpsertResidence(ctx context.Context, q Querier, r models.Residence) (string, error) {
	var id string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM residence WHERE residence_name = $1 AND block = $2`,
		r.ResidenceName, r.Block,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up residence: %w", err)
	}

	id, err = auth.GenerateID(16)
	if err != nil {
		return "", err
	}
	if r.ResidenceType == "" {
		r.ResidenceType = models.ResidenceOffCamp
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO residence (id, residence_name, block, on_campus, residence_type, available_rooms, restrictions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, r.ResidenceName, r.Block, r.OnCampus, r.ResidenceType, r.AvailableRooms, r.Restrictions)
	if err != nil {
		if IsUniqueViolation(err) {
			// Lost a race with a concurrent insert.
			err = q.QueryRowContext(ctx,
				`SELECT id FROM residence WHERE residence_name = $1 AND block = $2`,
				r.ResidenceName, r.Block,
			).Scan(&id)
			if err != nil {
				return "", fmt.Errorf("failed to look up residence: %w", err)
			}
			return id, nil
		}
		return "", fmt.Errorf("failed to insert residence: %w", err)
	}
	return id, nil
}
