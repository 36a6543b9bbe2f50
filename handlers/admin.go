// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
)

type AdminHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	mail    mailer.Mailer
	metrics *metrics.Metrics
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, mail mailer.Mailer, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, mail: mail, metrics: m}
}

// ListStudents handles GET /api/students
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := listStudents(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list students", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, students)
}

// processOrder maps an allocation method to the ranking of pending
// applications. Ties fall back to submission order.
var processOrder = map[string]string{
	models.MethodGPA:       "s.gpa DESC, a.apply_date ASC, a.id",
	models.MethodDistance:  "s.distance DESC, a.apply_date ASC, a.id",
	models.MethodFirstCome: "a.apply_date ASC, a.id",
}

type pendingApplication struct {
	id          string
	studentID   string
	residenceID string
}

// Process handles POST /api/process
func (h *AdminHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	order, ok := processOrder[req.Method]
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid method. Use gpa, distance or first_come")
		return
	}

	approved, err := h.process(r.Context(), order)
	if err != nil {
		slog.Error("failed to process applications", "method", req.Method, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process applications")
		return
	}

	h.metrics.Decisions.WithLabelValues(models.StatusApproved).Add(float64(len(approved)))
	slog.Info("applications processed", "method", req.Method, "approved", len(approved))

	for _, id := range approved {
		d, err := applicationDetail(r.Context(), h.db, id)
		if err != nil {
			slog.Error("failed to load application for email", "application_id", id, "error", err)
			continue
		}
		sendMail(r.Context(), h.mail, func() (mailer.Message, error) {
			return mailer.ApplicationApproved(d.Email, fullName(d.FirstName, d.LastName), d.ResidenceName, d.ApplyDate)
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProcessResponse{
		Success:        true,
		Method:         req.Method,
		AcceptedCount:  len(approved),
		ApplicationIDs: approved,
	})
}

// process approves pending applications in rank order while the residence
// has rooms left. A student gets at most one offer; students already holding
// an approved or accepted application are skipped.
func (h *AdminHandler) process(ctx context.Context, order string) ([]string, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Remaining capacity per residence
	remaining := make(map[string]int)
	rows, err := tx.QueryContext(ctx, `
		SELECT r.id, r.available_rooms, COUNT(a.id)
		FROM residence r
		LEFT JOIN application a ON a.residence_id = r.id AND a.status IN ($1, $2)
		GROUP BY r.id, r.available_rooms
	`, models.StatusApproved, models.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to query capacity: %w", err)
	}
	for rows.Next() {
		var id string
		var rooms, taken int
		if err := rows.Scan(&id, &rooms, &taken); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan capacity: %w", err)
		}
		remaining[id] = rooms - taken
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Students who already hold an offer
	holders := make(map[string]bool)
	rows, err = tx.QueryContext(ctx,
		"SELECT DISTINCT student_id FROM application WHERE status IN ($1, $2)",
		models.StatusApproved, models.StatusAccepted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer holders: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan offer holder: %w", err)
		}
		holders[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// order comes from processOrder, never from the request
	rows, err = tx.QueryContext(ctx, `
		SELECT a.id, a.student_id, a.residence_id
		FROM application a
		JOIN student s ON s.id = a.student_id
		WHERE a.status = $1
		ORDER BY `+order,
		models.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending applications: %w", err)
	}
	var pending []pendingApplication
	for rows.Next() {
		var p pendingApplication
		if err := rows.Scan(&p.id, &p.studentID, &p.residenceID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan pending application: %w", err)
		}
		pending = append(pending, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	approved := []string{}
	for _, p := range pending {
		if holders[p.studentID] || remaining[p.residenceID] <= 0 {
			continue
		}
		_, err := tx.ExecContext(ctx, "UPDATE application SET status = $1 WHERE id = $2", models.StatusApproved, p.id)
		if err != nil {
			return nil, fmt.Errorf("failed to approve application: %w", err)
		}
		holders[p.studentID] = true
		remaining[p.residenceID]--
		approved = append(approved, p.id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit processing: %w", err)
	}
	return approved, nil
}

// EmailTest handles POST /api/email/test
func (h *AdminHandler) EmailTest(w http.ResponseWriter, r *http.Request) {
	var req models.EmailTestRequest
	// An empty body means "send to the configured sender"
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = h.cfg.SMTP.From
	}

	msg, err := mailer.Test(to)
	if err == nil {
		err = h.mail.Send(r.Context(), msg)
	}
	if err != nil {
		slog.Error("test email failed", "to", to, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("test email sent", "to", to)
	middleware.JSONResponse(w, http.StatusOK, models.EmailTestResponse{Success: true, To: to})
}
