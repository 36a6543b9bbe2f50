// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/univen/housing-portal/auth"
	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/selection"
)

type ApplicationHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	mail    mailer.Mailer
	metrics *metrics.Metrics
	policy  selection.Policy
	now     func() time.Time
}

func NewApplicationHandler(db *sql.DB, cfg cliparse.Config, mail mailer.Mailer, m *metrics.Metrics) *ApplicationHandler {
	return &ApplicationHandler{
		db:      db,
		cfg:     cfg,
		mail:    mail,
		metrics: m,
		policy:  selection.NewPolicy(selection.DefaultConfig()),
		now:     time.Now,
	}
}

var errInvalidSelection = errors.New("invalid residence selection format")

// selectionInput accepts either a selection object or a "Name - Block" label.
type selectionInput struct {
	models.ResidenceSelection
}

func (s *selectionInput) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err == nil {
		name, block, _ := strings.Cut(label, " - ")
		s.ResidenceSelection = models.ResidenceSelection{
			ResidenceName: strings.TrimSpace(name),
			Block:         strings.TrimSpace(block),
		}
		return nil
	}
	if err := json.Unmarshal(b, &s.ResidenceSelection); err != nil {
		return errInvalidSelection
	}
	return nil
}

type createApplicationsBody struct {
	Residences []selectionInput `json:"residences"`
}

// validationError carries a message meant for the student.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

// CreateApplications handles POST /api/applications
func (h *ApplicationHandler) CreateApplications(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.Principal(r.Context())

	var req createApplicationsBody
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		if errors.Is(err, errInvalidSelection) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid residence selection format")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Residences) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No residences provided")
		return
	}

	selections := make([]models.ResidenceSelection, len(req.Residences))
	for i, in := range req.Residences {
		selections[i] = in.ResidenceSelection
	}

	appliedAt := h.now().UTC()
	ids, residences, err := h.createApplications(r.Context(), sess.UserID, selections, appliedAt)
	var verr validationError
	if errors.As(err, &verr) {
		slog.Info("application rejected", "student_id", sess.UserID, "reason", verr.msg)
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.msg)
		return
	}
	if err != nil {
		slog.Error("failed to create applications", "student_id", sess.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error creating applications")
		return
	}

	h.metrics.ApplicationsSubmitted.Add(float64(len(ids)))
	slog.Info("applications created", "student_id", sess.UserID, "application_ids", ids)

	names := make([]string, len(residences))
	for i, res := range residences {
		names[i] = res.ResidenceName
	}
	h.notifyStudent(r.Context(), sess.UserID, func(s models.Student) (mailer.Message, error) {
		return mailer.ApplicationSubmitted(s.Email, s.FullName(), names, appliedAt)
	})

	middleware.JSONResponse(w, http.StatusCreated, models.CreateApplicationsResponse{
		Success:        true,
		ApplicationIDs: ids,
	})
}

// createApplications resolves, validates and inserts a batch in one
// transaction. Rule violations come back as validationError.
func (h *ApplicationHandler) createApplications(ctx context.Context, studentID string, selections []models.ResidenceSelection, appliedAt time.Time) ([]string, []models.Residence, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the student row until commit so concurrent batches for the same
	// student see each other's inserts when counting the on-campus quota.
	lock, err := tx.ExecContext(ctx, `UPDATE student SET id = id WHERE id = $1`, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock student: %w", err)
	}
	if n, err := lock.RowsAffected(); err == nil && n == 0 {
		return nil, nil, errStudentNotFound
	}

	resolved := make([]models.Residence, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		var res models.Residence
		if sel.ResidenceID != "" {
			res, err = db.GetResidence(ctx, tx, sel.ResidenceID)
			if errors.Is(err, db.ErrResidenceNotFound) {
				return nil, nil, validationError{"Residence not found: id " + sel.ResidenceID}
			}
		} else {
			res, err = db.FindResidence(ctx, tx, sel.ResidenceName, sel.Block)
			if errors.Is(err, db.ErrResidenceNotFound) {
				return nil, nil, validationError{strings.TrimSpace("Residence not found: " + sel.ResidenceName + " " + sel.Block)}
			}
		}
		if err != nil {
			return nil, nil, err
		}
		if seen[res.ID] {
			return nil, nil, validationError{"Duplicate application for the same residence"}
		}
		seen[res.ID] = true
		resolved = append(resolved, res)
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM application a
		JOIN residence r ON r.id = a.residence_id
		WHERE a.student_id = $1 AND r.on_campus = $2
	`, studentID, true).Scan(&existing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count existing applications: %w", err)
	}

	onCampus := make([]bool, len(resolved))
	for i, res := range resolved {
		onCampus[i] = res.OnCampus
	}
	limit := h.policy.Config().MaxOnCampus
	switch err := h.policy.ValidateBatch(existing, onCampus); {
	case errors.Is(err, selection.ErrTooManyOnCampus):
		return nil, nil, validationError{fmt.Sprintf("Cannot select more than %d on-campus residences", limit)}
	case errors.Is(err, selection.ErrOnCampusQuota):
		return nil, nil, validationError{fmt.Sprintf("On-campus application limit exceeded (max %d)", limit)}
	case err != nil:
		return nil, nil, err
	}

	ids := make([]string, 0, len(resolved))
	for _, res := range resolved {
		id, err := auth.GenerateID(16)
		if err != nil {
			return nil, nil, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO application (id, student_id, residence_id, status, apply_date)
			VALUES ($1, $2, $3, $4, $5)
		`, id, studentID, res.ID, models.StatusPending, appliedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return nil, nil, validationError{"Duplicate application for the same residence"}
			}
			return nil, nil, fmt.Errorf("failed to insert application: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit applications: %w", err)
	}
	return ids, resolved, nil
}

// notifyStudent mails a student. Failures are logged and never reach the
// caller.
func (h *ApplicationHandler) notifyStudent(ctx context.Context, studentID string, build func(models.Student) (mailer.Message, error)) {
	student, err := getStudent(ctx, h.db, studentID)
	if err != nil {
		slog.Error("failed to load student for email", "student_id", studentID, "error", err)
		return
	}
	sendMail(ctx, h.mail, func() (mailer.Message, error) { return build(student) })
}

func sendMail(ctx context.Context, m mailer.Mailer, build func() (mailer.Message, error)) {
	msg, err := build()
	if err != nil {
		slog.Error("failed to render email", "error", err)
		return
	}
	if err := m.Send(ctx, msg); err != nil {
		slog.Error("failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}

// GetMyApplications handles GET /api/applications/me
func (h *ApplicationHandler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.Principal(r.Context())
	h.writeStudentApplications(w, r, sess.UserID)
}

// GetStudentApplications handles GET /api/applications/{student_id}
func (h *ApplicationHandler) GetStudentApplications(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.Principal(r.Context())
	studentID := r.PathValue("student_id")

	if sess.UserType != models.UserAdmin && sess.UserID != studentID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Forbidden")
		return
	}
	h.writeStudentApplications(w, r, studentID)
}

func (h *ApplicationHandler) writeStudentApplications(w http.ResponseWriter, r *http.Request, studentID string) {
	apps, err := studentApplications(r.Context(), h.db, studentID)
	if err != nil {
		slog.Error("failed to list applications", "student_id", studentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, apps)
}

// GetAllApplications handles GET /api/applications
func (h *ApplicationHandler) GetAllApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := allApplications(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list applications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, apps)
}
