// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET /api/residences", "GET", "200", 10*time.Millisecond)
	m.ObserveRequest("GET /api/residences", "GET", "200", 20*time.Millisecond)

	got := promtest.ToFloat64(m.RequestsTotal.WithLabelValues("GET /api/residences", "GET", "200"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ApplicationsSubmitted.Add(3)
	m.Decisions.WithLabelValues("Approved").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		"housing_applications_submitted_total 3",
		`housing_application_decisions_total{status="Approved"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration
	a, b := New(), New()
	a.RateLimited.Inc()
	if promtest.ToFloat64(b.RateLimited) != 0 {
		t.Error("registries share state")
	}
}
