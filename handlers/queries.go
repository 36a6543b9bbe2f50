// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/models"
)

var (
	errStudentNotFound     = errors.New("student not found")
	errApplicationNotFound = errors.New("application not found")
)

const studentColumns = `id, student_number, password_hash, first_name, last_name, email, phone, gender,
	program, year_of_study, gpa, distance, status, assigned_residence, room_number, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (models.Student, error) {
	var s models.Student
	var assigned, room sql.NullString
	err := row.Scan(&s.ID, &s.StudentNumber, &s.PasswordHash, &s.FirstName, &s.LastName, &s.Email,
		&s.Phone, &s.Gender, &s.Program, &s.YearOfStudy, &s.GPA, &s.Distance, &s.Status,
		&assigned, &room, &s.CreatedAt)
	s.AssignedResidence = nullString(assigned)
	s.RoomNumber = nullString(room)
	return s, err
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// getStudentBy loads one student where column = value. column is always a
// literal from this package.
func getStudentBy(ctx context.Context, q db.Querier, column, value string) (models.Student, error) {
	s, err := scanStudent(q.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM student WHERE `+column+` = $1`, value))
	if err == sql.ErrNoRows {
		return models.Student{}, errStudentNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

func getStudent(ctx context.Context, q db.Querier, id string) (models.Student, error) {
	return getStudentBy(ctx, q, "id", id)
}

func listStudents(ctx context.Context, q db.Querier) ([]models.Student, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+studentColumns+` FROM student ORDER BY student_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// studentApplications returns a student's applications, newest first.
func studentApplications(ctx context.Context, q db.Querier, studentID string) ([]models.StudentApplication, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, r.residence_name, r.block, r.on_campus, a.status, a.apply_date, a.room_number
		FROM application a
		JOIN residence r ON r.id = a.residence_id
		WHERE a.student_id = $1
		ORDER BY a.apply_date DESC, a.id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := []models.StudentApplication{}
	for rows.Next() {
		var a models.StudentApplication
		var room sql.NullString
		if err := rows.Scan(&a.ID, &a.ResidenceName, &a.Block, &a.OnCampus, &a.Status, &a.AppliedDate, &room); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.RoomNumber = nullString(room)
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

const detailQuery = `
	SELECT a.id, a.status, a.apply_date, a.room_number,
	       s.id, s.student_number, s.first_name, s.last_name, s.email,
	       r.id, r.residence_name, r.block, r.on_campus
	FROM application a
	JOIN student s ON s.id = a.student_id
	JOIN residence r ON r.id = a.residence_id`

func scanDetail(row rowScanner) (models.ApplicationDetail, error) {
	var d models.ApplicationDetail
	var room sql.NullString
	err := row.Scan(&d.ID, &d.Status, &d.ApplyDate, &room,
		&d.StudentID, &d.StudentNumber, &d.FirstName, &d.LastName, &d.Email,
		&d.ResidenceID, &d.ResidenceName, &d.Block, &d.OnCampus)
	d.RoomNumber = nullString(room)
	return d, err
}

func applicationDetail(ctx context.Context, q db.Querier, id string) (models.ApplicationDetail, error) {
	d, err := scanDetail(q.QueryRowContext(ctx, detailQuery+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return models.ApplicationDetail{}, errApplicationNotFound
	}
	if err != nil {
		return models.ApplicationDetail{}, fmt.Errorf("failed to get application: %w", err)
	}
	return d, nil
}

func allApplications(ctx context.Context, q db.Querier) ([]models.ApplicationDetail, error) {
	rows, err := q.QueryContext(ctx, detailQuery+` ORDER BY a.apply_date DESC, a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := []models.ApplicationDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, d)
	}
	return apps, rows.Err()
}

func fullName(first, last string) string {
	return models.Student{FirstName: first, LastName: last}.FullName()
}
