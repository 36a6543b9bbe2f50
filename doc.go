// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the housing portal API server.

The housing portal lets students apply for university residences, and lets
administrators review, bulk-process and export those applications.

# Starting the Server

Configuration comes from flags, the environment, or an optional .env file
in the working directory:

	DATABASE_URL=housing.db go run .

Or with flags against PostgreSQL:

	go run . -p 5000 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - ADMIN_EMAIL, ADMIN_PASSWORD: bootstrap admin account
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM: outgoing mail;
    without them emails are only logged
  - RESET_STORE, REDIS_URL: where password reset codes live
  - SEED_DEMO: insert demo students

# Architecture

  - handlers: HTTP request handlers (auth, residences, applications, admin, reset)
  - router: Route definitions using Go 1.22+ routing
  - middleware: sessions, rate limiting, metrics, CORS, logging, JSON helpers
  - selection: selection limits shared with the client
  - sessions, resetstore: server-side session and reset code storage
  - mailer: SMTP delivery and email templates
  - janitor: periodic cleanup of expired rows
  - db: schema, residence lookups and seed data
  - cliparse: configuration parsing

The terminal client lives in cmd/portal. See package documentation for each
component.
*/
package main
