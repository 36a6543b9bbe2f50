// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/univen/housing-portal/sessions"
)

// SessionLookup resolves a session token. *sessions.Store satisfies it.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (sessions.Session, error)
}

// RequireRole admits requests whose session cookie belongs to one of roles
// and stores the session in the request context. Everything else gets 401.
func RequireRole(store SessionLookup, roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Lookup(r.Context(), sessions.TokenFromRequest(r))
			if err != nil {
				if !errors.Is(err, sessions.ErrNoSession) {
					slog.Error("failed to look up session", "error", err)
				}
				ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, sess.UserType) {
				ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			NoStore(w)
			next(w, r.WithContext(WithPrincipal(r.Context(), sess)))
		}
	}
}

// WithPrincipal attaches an authenticated session to ctx.
func WithPrincipal(ctx context.Context, sess sessions.Session) context.Context {
	return context.WithValue(ctx, principalKey, sess)
}

// Principal returns the session stored by RequireRole.
func Principal(ctx context.Context) (sessions.Session, bool) {
	sess, ok := ctx.Value(principalKey).(sessions.Session)
	return sess, ok
}
