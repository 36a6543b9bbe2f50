// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/models"
	"github.com/xuri/excelize/v2"
)

type ResidenceHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResidenceHandler(db *sql.DB, cfg cliparse.Config) *ResidenceHandler {
	return &ResidenceHandler{db: db, cfg: cfg}
}

// parseFlag accepts the truthy spellings browsers and forms send.
func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ListResidences handles GET /api/residences?on_campus=&type=
func (h *ResidenceHandler) ListResidences(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var onCampus *bool
	if query.Has("on_campus") {
		v := parseFlag(query.Get("on_campus"))
		onCampus = &v
	}

	residences, err := db.ListResidences(r.Context(), h.db, onCampus, query.Get("type"))
	if err != nil {
		slog.Error("failed to list residences", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, residences)
}

// Stats handles GET /api/residences/stats
func (h *ResidenceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The off-campus page always lists these, so make sure they exist
	if _, err := db.UpsertOffCampus(ctx, h.db, db.DefaultOffCampus); err != nil {
		slog.Error("failed to ensure off-campus residences", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	residences, err := db.ListResidences(ctx, h.db, nil, "")
	if err != nil {
		slog.Error("failed to list residences", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT residence_id, COUNT(*)
		FROM application
		WHERE status = $1
		GROUP BY residence_id
	`, models.StatusAccepted)
	if err != nil {
		slog.Error("failed to count accepted applications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	accepted := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			slog.Error("failed to scan accepted count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		accepted[id] = count
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate accepted counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	stats := make([]models.ResidenceStats, 0, len(residences))
	for _, res := range residences {
		stats = append(stats, models.ResidenceStats{Residence: res, AcceptedCount: accepted[res.ID]})
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// SyncOffCampus handles POST /api/offcampus/sync
func (h *ResidenceHandler) SyncOffCampus(w http.ResponseWriter, r *http.Request) {
	var req models.OffCampusSyncRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ids, err := db.UpsertOffCampus(r.Context(), h.db, req.ResidenceNames)
	if err != nil {
		slog.Error("failed to sync off-campus residences", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sync residences")
		return
	}

	slog.Info("off-campus residences synced", "count", len(ids))
	middleware.JSONResponse(w, http.StatusOK, models.OffCampusSyncResponse{Success: true, IDs: ids})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportAccepted handles GET /api/offcampus/{residence_id}/accepted/export
func (h *ResidenceHandler) ExportAccepted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residenceID := r.PathValue("residence_id")

	res, err := db.GetResidence(ctx, h.db, residenceID)
	if errors.Is(err, db.ErrResidenceNotFound) || (err == nil && res.OnCampus) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Residence not found or not off-campus")
		return
	}
	if err != nil {
		slog.Error("failed to get residence", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT s.first_name, s.last_name, s.student_number, s.email
		FROM application a
		JOIN student s ON s.id = a.student_id
		WHERE a.status = $1 AND a.residence_id = $2
		ORDER BY s.last_name, s.first_name
	`, models.StatusAccepted, residenceID)
	if err != nil {
		slog.Error("failed to query accepted students", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	var records [][]any
	for rows.Next() {
		var first, last, number, email string
		if err := rows.Scan(&first, &last, &number, &email); err != nil {
			slog.Error("failed to scan accepted student", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		records = append(records, []any{fullName(first, last), number, email})
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate accepted students", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	f, err := acceptedWorkbook(res.ResidenceName, records)
	if err != nil {
		slog.Error("failed to build workbook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build export")
		return
	}
	defer f.Close()

	filename := "accepted_" + strings.ReplaceAll(res.ResidenceName, " ", "_") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	middleware.NoStore(w)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

// AcceptedSheet is the worksheet name used by the accepted-students export.
const AcceptedSheet = "Accepted"

// acceptedWorkbook lays out a title row, a header row and one row per student.
func acceptedWorkbook(residence string, records [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", AcceptedSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetCellValue(AcceptedSheet, "A1", "Accepted Students - "+residence); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(AcceptedSheet, "A3", &[]any{"Name", "Student ID", "Email"}); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(AcceptedSheet, "A1", "C3", bold); err != nil {
		f.Close()
		return nil, err
	}

	if len(records) == 0 {
		if err := f.SetCellValue(AcceptedSheet, "A4", "No accepted students for this residence yet."); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(AcceptedSheet, cell, &rec); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(AcceptedSheet, "A", "C", 28); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
