// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/testutil"
)

var lockStudent = regexp.QuoteMeta(`UPDATE student SET id = id WHERE id = $1`)

// The student row must be locked before anything is read, otherwise two
// batches under READ COMMITTED can both count zero on-campus applications.
func TestCreateApplications_LocksStudentFirst(t *testing.T) {
	selections := []models.ResidenceSelection{{ResidenceName: "DBSA Male", Block: "M-1"}}

	t.Run("lock precedes residence lookup", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("Failed to create sqlmock: %v", err)
		}
		defer conn.Close()
		handler := NewApplicationHandler(conn, testutil.GetTestConfig(), &mailer.Recorder{}, metrics.New())

		mock.ExpectBegin()
		mock.ExpectExec(lockStudent).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .+ FROM residence`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		if _, _, err := handler.createApplications(context.Background(), "s1", selections, time.Now()); err == nil {
			t.Fatal("Expected lookup error to be returned")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unexpected statement order: %v", err)
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("Failed to create sqlmock: %v", err)
		}
		defer conn.Close()
		handler := NewApplicationHandler(conn, testutil.GetTestConfig(), &mailer.Recorder{}, metrics.New())

		mock.ExpectBegin()
		mock.ExpectExec(lockStudent).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, _, err = handler.createApplications(context.Background(), "gone", selections, time.Now())
		if !errors.Is(err, errStudentNotFound) {
			t.Errorf("Expected errStudentNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unexpected statements: %v", err)
		}
	})
}
