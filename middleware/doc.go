// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms).

# Request IDs and Metrics

The router wraps the whole mux:

	handler := middleware.WithRequestID(middleware.WithMetrics(m, middleware.CORS(mux)))

WithRequestID must sit outside WithMetrics: it copies the request, and
WithMetrics reads the route pattern that ServeMux writes into the request it
was handed.

# Sessions

RequireRole resolves the housing_session cookie and rejects anything that is
not one of the listed principal types with 401 {"error":"Unauthorized"}:

	mux.HandleFunc("POST /api/applications",
		middleware.WithLogging(requireStudent(h.CreateApplications)))

Handlers read the caller with middleware.Principal(r.Context()).

# Rate Limiting

A per-client token bucket keyed by auth.HashIP of the client address:

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.IPHashSalt, m)
	mux.HandleFunc("POST /api/login", middleware.WithLogging(rl.Limit(h.Login)))

Over-limit requests get 429 with Retry-After: 1.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "No residences provided")

ErrorResponse bodies look like {"error": "<message>", "code": "Bad Request"}.

Parse JSON request bodies:

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
