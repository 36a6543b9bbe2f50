// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the housing portal API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: login, logout and the current principal
  - ResidenceHandler: residence catalog, statistics and off-campus exports
  - ApplicationHandler: submissions, listings and offer responses
  - AdminHandler: student listing, batch processing and SMTP checks
  - PasswordResetHandler: one-time reset codes

Handlers are created via constructor functions:

	appHandler := handlers.NewApplicationHandler(db, cfg, mail, m)

# Authentication

Handlers do not check sessions themselves. The router wraps them in
middleware.RequireRole and they read the caller with middleware.Principal.

# Application Lifecycle

Applications move Pending → Approved → Accepted, or end in Rejected
either by an admin decision or by the student declining an offer.

	POST /api/applications              → CreateApplications (Pending)
	POST /api/applications/{id}/approve → Approve (admin)
	POST /api/applications/{id}/accept  → AcceptOffer (student)

A submission is validated and inserted in a single transaction, so
concurrent submissions from one student cannot exceed the on-campus limit.

# Notifications

Status changes mail the student. Delivery failures are logged and never
fail the request, except for password reset codes where the email is the
whole point of the call.
*/
package handlers
