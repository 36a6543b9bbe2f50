// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/univen/housing-portal/testutil"
)

func TestStore_CreateLookupDelete(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := NewStore(conn, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "student", "s1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Create() returned empty token")
	}

	got, err := store.Lookup(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.UserType != "student" || got.UserID != "s1" {
		t.Errorf("Lookup() = %+v", got)
	}

	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Lookup(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Lookup() after delete error = %v, want ErrNoSession", err)
	}
}

func TestStore_LookupUnknown(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := NewStore(conn, time.Hour)

	for _, token := range []string{"", "nope"} {
		if _, err := store.Lookup(context.Background(), token); !errors.Is(err, ErrNoSession) {
			t.Errorf("Lookup(%q) error = %v, want ErrNoSession", token, err)
		}
	}
}

func TestStore_ExpiryAndPurge(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := NewStore(conn, time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	old, err := store.Create(ctx, "admin", "a1")
	if err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return now.Add(30 * time.Second) }
	fresh, err := store.Create(ctx, "student", "s1")
	if err != nil {
		t.Fatal(err)
	}

	// Past the first session's expiry but not the second's
	store.now = func() time.Time { return now.Add(61 * time.Second) }

	if _, err := store.Lookup(ctx, old.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("expired session still valid: %v", err)
	}
	if _, err := store.Lookup(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session rejected: %v", err)
	}

	n, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", n)
	}
}

func TestStore_DeleteUser(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := NewStore(conn, time.Hour)
	ctx := context.Background()

	a, _ := store.Create(ctx, "student", "s1")
	b, _ := store.Create(ctx, "student", "s1")
	other, _ := store.Create(ctx, "student", "s2")

	if err := store.DeleteUser(ctx, "student", "s1"); err != nil {
		t.Fatal(err)
	}
	for _, tok := range []string{a.Token, b.Token} {
		if _, err := store.Lookup(ctx, tok); !errors.Is(err, ErrNoSession) {
			t.Errorf("session %s survived DeleteUser", tok)
		}
	}
	if _, err := store.Lookup(ctx, other.Token); err != nil {
		t.Errorf("unrelated session removed: %v", err)
	}
}

func TestCookies(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, Session{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}, true)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "abc" || !c.HttpOnly || !c.Secure {
		t.Errorf("unexpected cookie %+v", c)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(c)
	if got := TokenFromRequest(r); got != "abc" {
		t.Errorf("TokenFromRequest() = %q", got)
	}
	if got := TokenFromRequest(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("TokenFromRequest() without cookie = %q", got)
	}

	w = httptest.NewRecorder()
	ClearCookie(w, false)
	cleared := w.Result().Cookies()[0]
	if cleared.MaxAge >= 0 {
		t.Errorf("ClearCookie() MaxAge = %d, want negative", cleared.MaxAge)
	}
	if testutil.SessionCookie != CookieName {
		t.Error("testutil cookie name out of sync")
	}
}
