// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the housing portal API.

# Route Registration

NewRouter creates the handler stack with all endpoints:

	h := router.NewRouter(db, cfg, router.Deps{...})

The returned handler assigns request ids, records Prometheus metrics per
route pattern and answers CORS preflights before reaching the mux.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Sessions (login and reset are rate limited per client):

	POST /api/login
	POST /api/logout
	GET  /logout
	GET  /api/me
	POST /api/password-reset/request
	POST /api/password-reset/verify

Residences:

	GET  /api/residences                              - public catalog
	GET  /api/residences/stats                        - admin
	POST /api/offcampus/sync                          - admin
	GET  /api/offcampus/{residence_id}/accepted/export - admin

Applications (student):

	POST /api/applications
	GET  /api/applications/me
	POST /api/applications/{id}/accept
	POST /api/applications/{id}/reject_offer

Administration:

	GET  /api/applications
	GET  /api/applications/{student_id} - admin or owner
	POST /api/applications/{id}/approve
	POST /api/applications/{id}/reject
	GET  /api/students
	POST /api/process
	POST /api/email/test

Requests without a valid session, or with the wrong role, get 401.
*/
package router
