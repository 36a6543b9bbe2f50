// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/univen/housing-portal/auth"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "housing_session"

var ErrNoSession = errors.New("no valid session")

// Session is an authenticated principal bound to an opaque token.
type Session struct {
	Token     string
	UserType  string
	UserID    string
	ExpiresAt time.Time
}

// Store keeps sessions in the user_session table.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Create starts a session for the given principal.
func (s *Store) Create(ctx context.Context, userType, userID string) (Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     token,
		UserType:  userType,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_session (token, user_type, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`, sess.Token, sess.UserType, sess.UserID, sess.ExpiresAt.Unix())
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// Lookup returns the live session for token, or ErrNoSession.
func (s *Store) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}

	var sess Session
	var expires int64
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_type, user_id, expires_at FROM user_session WHERE token = $1",
		token,
	).Scan(&sess.Token, &sess.UserType, &sess.UserID, &expires)
	if err == sql.ErrNoRows {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to look up session: %w", err)
	}

	sess.ExpiresAt = time.Unix(expires, 0)
	if !s.now().Before(sess.ExpiresAt) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Delete ends a session. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM user_session WHERE token = $1", token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUser ends every session of one principal.
func (s *Store) DeleteUser(ctx context.Context, userType, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM user_session WHERE user_type = $1 AND user_id = $2",
		userType, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired removes expired sessions and reports how many were dropped.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_session WHERE expires_at <= $1", s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// SetCookie writes the session cookie.
func SetCookie(w http.ResponseWriter, sess Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session token carried by r, if any.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
