// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is the common subset of PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Residences
CREATE TABLE IF NOT EXISTS residence (
    id TEXT PRIMARY KEY,
    residence_name TEXT NOT NULL,
    block TEXT NOT NULL DEFAULT '',
    on_campus BOOLEAN NOT NULL DEFAULT FALSE,
    residence_type TEXT NOT NULL DEFAULT 'offcamp' CHECK (residence_type IN ('male', 'female', 'offcamp')),
    available_rooms INTEGER NOT NULL DEFAULT 0,
    restrictions TEXT NOT NULL DEFAULT '',
    UNIQUE (residence_name, block)
);

CREATE INDEX IF NOT EXISTS idx_residence_name ON residence(residence_name);

-- Students
CREATE TABLE IF NOT EXISTS student (
    id TEXT PRIMARY KEY,
    student_number TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT 'other' CHECK (gender IN ('male', 'female', 'other')),
    program TEXT NOT NULL DEFAULT '',
    year_of_study INTEGER NOT NULL DEFAULT 1,
    gpa DOUBLE PRECISION NOT NULL DEFAULT 0,
    distance DOUBLE PRECISION NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'waitlisted',
    assigned_residence TEXT,
    room_number TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_student_email ON student(email);

-- Admins
CREATE TABLE IF NOT EXISTS admin (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Applications
CREATE TABLE IF NOT EXISTS application (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL REFERENCES student(id) ON DELETE CASCADE,
    residence_id TEXT NOT NULL REFERENCES residence(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Approved', 'Rejected', 'Accepted')),
    apply_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    room_number TEXT,
    UNIQUE (student_id, residence_id)
);

CREATE INDEX IF NOT EXISTS idx_application_student_id ON application(student_id);
CREATE INDEX IF NOT EXISTS idx_application_residence_id ON application(residence_id);
CREATE INDEX IF NOT EXISTS idx_application_status ON application(status);

-- Login sessions
CREATE TABLE IF NOT EXISTS user_session (
    token TEXT PRIMARY KEY,
    user_type TEXT NOT NULL CHECK (user_type IN ('student', 'admin')),
    user_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_session_expires_at ON user_session(expires_at);

-- Password reset codes
CREATE TABLE IF NOT EXISTS password_reset (
    email TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    user_type TEXT NOT NULL CHECK (user_type IN ('student', 'admin')),
    user_id TEXT NOT NULL,
    expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_password_reset_expires_at ON password_reset(expires_at);
`
