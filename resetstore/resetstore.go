// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/univen/housing-portal/auth"
)

var (
	ErrNotFound = errors.New("invalid or expired OTP")
	ErrExpired  = errors.New("OTP has expired")
)

// Entry is an outstanding password reset code.
type Entry struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	UserType  string    `json:"user_type"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store holds at most one code per email; Put replaces any earlier code.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, email string) (Entry, error)
	Delete(ctx context.Context, email string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Check validates a submitted code. Expired entries are deleted and reported
// as ErrExpired; a wrong code yields auth.ErrInvalidOTP and keeps the entry.
func Check(ctx context.Context, s Store, email, code string, now time.Time) (Entry, error) {
	e, err := s.Get(ctx, NormalizeEmail(email))
	if err != nil {
		return Entry{}, err
	}
	if !now.Before(e.ExpiresAt) {
		if err := s.Delete(ctx, e.Email); err != nil {
			return Entry{}, err
		}
		return Entry{}, ErrExpired
	}
	if err := auth.CompareOTP(e.Code, strings.TrimSpace(code)); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// NormalizeEmail is the key form used by every store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SQLStore keeps codes in the password_reset table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_reset (email, code, user_type, user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			code = excluded.code,
			user_type = excluded.user_type,
			user_id = excluded.user_id,
			expires_at = excluded.expires_at
	`, NormalizeEmail(e.Email), e.Code, e.UserType, e.UserID, e.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, email string) (Entry, error) {
	var e Entry
	var expires int64
	err := s.db.QueryRowContext(ctx,
		"SELECT email, code, user_type, user_id, expires_at FROM password_reset WHERE email = $1",
		NormalizeEmail(email),
	).Scan(&e.Email, &e.Code, &e.UserType, &e.UserID, &expires)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read reset code: %w", err)
	}
	e.ExpiresAt = time.Unix(expires, 0)
	return e, nil
}

func (s *SQLStore) Delete(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM password_reset WHERE email = $1", NormalizeEmail(email)); err != nil {
		return fmt.Errorf("failed to delete reset code: %w", err)
	}
	return nil
}

func (s *SQLStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM password_reset WHERE expires_at <= $1", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset codes: %w", err)
	}
	return res.RowsAffected()
}
