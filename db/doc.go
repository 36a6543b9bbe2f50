// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, residence lookups and seed
data.

# Drivers

Open accepts "sqlite" (modernc.org/sqlite, the default and the test driver)
or "postgres" (lib/pq):

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

All SQL uses $N placeholders and the DDL subset both engines accept.
SQLite connections are capped at one, so a caller holding a transaction or
an open *sql.Rows must finish with it before touching *sql.DB again.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - residence: catalog entries, unique per (residence_name, block)
  - student: accounts, profile and the allocated room
  - admin: administrator accounts
  - application: one per (student, residence) with status and apply date
  - user_session: opaque session tokens
  - password_reset: one outstanding reset code per email

# Relationships

	student   1──* application
	residence 1──* application

# Residence Lookup

FindResidence matches a name and block the way students type them. Blocks
are normalised first (M5 → M-5), and a residence without a matching block
falls back to a name-only match.
*/
package db
