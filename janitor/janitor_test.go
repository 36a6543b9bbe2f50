// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package janitor

import (
	"context"
	"errors"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/sessions"
	"github.com/univen/housing-portal/testutil"
)

type fakeLimiter struct{ dropped int }

func (f *fakeLimiter) Cleanup(time.Duration) int { return f.dropped }

type failingSessions struct{}

func (failingSessions) PurgeExpired(context.Context) (int64, error) {
	return 0, errors.New("db gone")
}

func TestSweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	m := metrics.New()

	store := sessions.NewStore(db, time.Hour)
	codes := resetstore.NewSQLStore(db)

	live := testutil.CreateTestSession(t, db, "student", "s1")
	_, err := db.Exec(`
		INSERT INTO user_session (token, user_type, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`, "stale", "student", "s2", time.Now().Add(-time.Minute).Unix())
	if err != nil {
		t.Fatalf("Failed to insert expired session: %v", err)
	}

	now := time.Now()
	codes.Put(ctx, resetstore.Entry{Email: "old@example.com", Code: "123456", UserType: "student", UserID: "s2", ExpiresAt: now.Add(-time.Second)})
	codes.Put(ctx, resetstore.Entry{Email: "new@example.com", Code: "654321", UserType: "student", UserID: "s1", ExpiresAt: now.Add(5 * time.Minute)})

	j := New(store, codes, &fakeLimiter{dropped: 3}, m)
	res, err := j.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	want := Result{Sessions: 1, ResetCodes: 1, Limiters: 3}
	if res != want {
		t.Errorf("Sweep() = %+v, want %+v", res, want)
	}
	if _, err := store.Lookup(ctx, live); err != nil {
		t.Errorf("Live session was purged: %v", err)
	}
	if _, err := codes.Get(ctx, "new@example.com"); err != nil {
		t.Errorf("Live reset code was purged: %v", err)
	}

	for kind, want := range map[string]float64{"sessions": 1, "reset_codes": 1, "rate_limiters": 3} {
		if got := promtest.ToFloat64(m.Purged.WithLabelValues(kind)); got != want {
			t.Errorf("purged{kind=%s} = %v, want %v", kind, got, want)
		}
	}

	// A second sweep finds nothing
	res, _ = j.Sweep(ctx)
	if res.Sessions != 0 || res.ResetCodes != 0 {
		t.Errorf("Expected nothing left to purge, got %+v", res)
	}
}

func TestSweep_ContinuesAfterFailure(t *testing.T) {
	limiter := &fakeLimiter{dropped: 2}
	j := New(failingSessions{}, nil, limiter, nil)

	res, err := j.Sweep(context.Background())

	if err == nil {
		t.Error("Expected the session purge error to be returned")
	}
	if res.Limiters != 2 {
		t.Errorf("Expected limiter cleanup to still run, got %+v", res)
	}
}

func TestStart(t *testing.T) {
	j := New(nil, nil, &fakeLimiter{}, nil)

	if err := j.Start("not a schedule"); err == nil {
		t.Error("Expected invalid schedule to be rejected")
	}

	if err := j.Start(DefaultSchedule); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.Start(DefaultSchedule); err == nil {
		t.Error("Expected second Start to fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
