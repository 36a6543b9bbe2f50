// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnvFile reads an optional .env file, then ParseFlags returns a Config:

	_ = cliparse.LoadEnvFile(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p               Server port
	-d               Database URL or SQLite path
	-t               Database type (sqlite or postgres)
	-admin-email     Bootstrap admin email
	-admin-password  Bootstrap admin password
	-seed-demo       Insert demo students

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_EMAIL    → -admin-email
	ADMIN_PASSWORD → -admin-password
	SEED_DEMO      → -seed-demo

The remaining settings are environment only: SESSION_TTL, OTP_TTL,
COOKIE_SECURE, STUDENT_EMAIL_DOMAIN, SMTP_*, RESET_STORE, REDIS_URL,
RATE_LIMIT_RPS, RATE_LIMIT_BURST and IP_HASH_SALT.

CLI flags take precedence over environment variables, and variables already
set in the environment take precedence over the .env file.

# Validation

ParseFlags returns an error if:

  - no database URL is given
  - the database type or reset store is unknown
  - RESET_STORE=redis without REDIS_URL
  - a numeric or duration variable does not parse
*/
package cliparse
