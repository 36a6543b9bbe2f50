// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
)

// loadApplication writes 404/500 itself and reports whether the caller
// should continue.
func (h *ApplicationHandler) loadApplication(w http.ResponseWriter, r *http.Request) (models.ApplicationDetail, bool) {
	d, err := applicationDetail(r.Context(), h.db, r.PathValue("id"))
	if errors.Is(err, errApplicationNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Application not found")
		return d, false
	}
	if err != nil {
		slog.Error("failed to load application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return d, false
	}
	return d, true
}

func (h *ApplicationHandler) setStatus(ctx context.Context, id, status string) error {
	if _, err := h.db.ExecContext(ctx, "UPDATE application SET status = $1 WHERE id = $2", status, id); err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	h.metrics.Decisions.WithLabelValues(status).Inc()
	return nil
}

// Approve handles POST /api/applications/{id}/approve
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadApplication(w, r)
	if !ok {
		return
	}

	if err := h.setStatus(r.Context(), d.ID, models.StatusApproved); err != nil {
		slog.Error("failed to approve application", "application_id", d.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}

	slog.Info("application approved", "application_id", d.ID, "student_id", d.StudentID)
	sendMail(r.Context(), h.mail, func() (mailer.Message, error) {
		return mailer.ApplicationApproved(d.Email, fullName(d.FirstName, d.LastName), d.ResidenceName, d.ApplyDate)
	})

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Reject handles POST /api/applications/{id}/reject
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadApplication(w, r)
	if !ok {
		return
	}

	if err := h.setStatus(r.Context(), d.ID, models.StatusRejected); err != nil {
		slog.Error("failed to reject application", "application_id", d.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}

	slog.Info("application rejected by admin", "application_id", d.ID, "student_id", d.StudentID)
	sendMail(r.Context(), h.mail, func() (mailer.Message, error) {
		return mailer.ApplicationRejected(d.Email, fullName(d.FirstName, d.LastName), d.ResidenceName)
	})

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// loadOwnOffer loads an application the signed-in student may act on. Only
// approved offers can be accepted or declined.
func (h *ApplicationHandler) loadOwnOffer(w http.ResponseWriter, r *http.Request) (models.ApplicationDetail, bool) {
	sess, _ := middleware.Principal(r.Context())

	d, ok := h.loadApplication(w, r)
	if !ok {
		return d, false
	}
	if d.StudentID != sess.UserID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Forbidden")
		return d, false
	}
	if d.Status != models.StatusApproved {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Offer not approved yet")
		return d, false
	}
	return d, true
}

// RoomNumber allocates a room label for an accepted on-campus offer.
func RoomNumber(block string, unix int64) string {
	if block == "" {
		block = "Block"
	}
	return fmt.Sprintf("%s-%d", block, unix%1000)
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// AcceptOffer handles POST /api/applications/{id}/accept
func (h *ApplicationHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, ok := h.loadOwnOffer(w, r)
	if !ok {
		return
	}

	var room *string
	if d.OnCampus {
		v := RoomNumber(d.Block, h.now().Unix())
		room = &v
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE application SET status = $1, room_number = $2 WHERE id = $3",
		models.StatusAccepted, nullable(room), d.ID,
	)
	if err != nil {
		slog.Error("failed to accept offer", "application_id", d.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE student SET status = $1, assigned_residence = $2, room_number = $3 WHERE id = $4",
		"allocated", models.StudentApplication{ResidenceName: d.ResidenceName, Block: d.Block}.Label(), nullable(room), d.StudentID,
	)
	if err != nil {
		slog.Error("failed to update student allocation", "student_id", d.StudentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit offer acceptance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}
	h.metrics.Decisions.WithLabelValues(models.StatusAccepted).Inc()

	slog.Info("offer accepted", "application_id", d.ID, "student_id", d.StudentID)
	roomLabel := ""
	if room != nil {
		roomLabel = *room
	}
	sendMail(ctx, h.mail, func() (mailer.Message, error) {
		return mailer.OfferAccepted(d.Email, fullName(d.FirstName, d.LastName), d.ResidenceName, roomLabel)
	})

	middleware.JSONResponse(w, http.StatusOK, models.AcceptOfferResponse{Success: true, RoomNumber: room})
}

// RejectOffer handles POST /api/applications/{id}/reject_offer
func (h *ApplicationHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadOwnOffer(w, r)
	if !ok {
		return
	}

	if err := h.setStatus(r.Context(), d.ID, models.StatusRejected); err != nil {
		slog.Error("failed to decline offer", "application_id", d.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update")
		return
	}

	slog.Info("offer declined", "application_id", d.ID, "student_id", d.StudentID)
	sendMail(r.Context(), h.mail, func() (mailer.Message, error) {
		return mailer.OfferRejected(d.Email, fullName(d.FirstName, d.LastName), d.ResidenceName)
	})

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
