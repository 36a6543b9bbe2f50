// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package janitor periodically removes expired sessions, expired password
// reset codes and idle rate limiter entries.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/univen/housing-portal/metrics"
)

// DefaultSchedule runs a sweep every ten minutes.
const DefaultSchedule = "@every 10m"

// LimiterIdle is how long a client may stay quiet before its token bucket
// is dropped.
const LimiterIdle = 30 * time.Minute

type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type CodePurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type LimiterCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

// Result counts what one sweep removed.
type Result struct {
	Sessions   int64
	ResetCodes int64
	Limiters   int
}

type Janitor struct {
	sessions SessionPurger
	codes    CodePurger
	limiter  LimiterCleaner
	metrics  *metrics.Metrics
	now      func() time.Time
	cron     *cron.Cron
}

// New builds a janitor. Any of the purgers may be nil and is then skipped.
func New(sessions SessionPurger, codes CodePurger, limiter LimiterCleaner, m *metrics.Metrics) *Janitor {
	return &Janitor{
		sessions: sessions,
		codes:    codes,
		limiter:  limiter,
		metrics:  m,
		now:      time.Now,
	}
}

// Sweep runs every purger once. Individual failures are logged and the
// remaining purgers still run; the first error is returned.
func (j *Janitor) Sweep(ctx context.Context) (Result, error) {
	var res Result
	var firstErr error

	if j.sessions != nil {
		n, err := j.sessions.PurgeExpired(ctx)
		if err != nil {
			slog.Error("failed to purge sessions", "error", err)
			firstErr = err
		}
		res.Sessions = n
		j.count("sessions", float64(n))
	}

	if j.codes != nil {
		n, err := j.codes.PurgeExpired(ctx, j.now())
		if err != nil {
			slog.Error("failed to purge reset codes", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		res.ResetCodes = n
		j.count("reset_codes", float64(n))
	}

	if j.limiter != nil {
		res.Limiters = j.limiter.Cleanup(LimiterIdle)
		j.count("rate_limiters", float64(res.Limiters))
	}

	slog.Debug("janitor sweep finished",
		"sessions", res.Sessions,
		"reset_codes", res.ResetCodes,
		"rate_limiters", res.Limiters)
	return res, firstErr
}

func (j *Janitor) count(kind string, n float64) {
	if j.metrics != nil && n > 0 {
		j.metrics.Purged.WithLabelValues(kind).Add(n)
	}
}

// Start schedules Sweep on a cron schedule such as "@every 10m". Start must not
// be called twice.
func (j *Janitor) Start(schedule string) error {
	if j.cron != nil {
		return fmt.Errorf("janitor already started")
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	j.cron = c
	c.Start()
	slog.Info("janitor started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep, or for ctx.
func (j *Janitor) Stop(ctx context.Context) {
	if j.cron == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
