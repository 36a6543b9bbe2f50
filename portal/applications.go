// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/univen/housing-portal/models"
)

// ApplicationRow is one line of the "My Applications" section.
type ApplicationRow struct {
	ID      string
	Label   string
	Status  string
	Applied string
	Room    string
	// CanRespond is set while an approved offer awaits accept or decline.
	CanRespond bool
	Local      bool
}

// ApplicationRows renders server applications followed by local records
// the server does not list yet.
func ApplicationRows(apps []models.StudentApplication, local []SubmittedRecord, now time.Time) []ApplicationRow {
	rows := make([]ApplicationRow, 0, len(apps))
	known := map[string]bool{}
	for _, a := range apps {
		row := ApplicationRow{
			ID:         a.ID,
			Label:      a.Label(),
			Status:     a.Status,
			Applied:    humanize.RelTime(a.AppliedDate, now, "ago", "from now"),
			CanRespond: a.Status == models.StatusApproved,
		}
		if a.RoomNumber != nil {
			row.Room = *a.RoomNumber
		}
		known[row.Label] = true
		rows = append(rows, row)
	}

	for _, rec := range local {
		for _, label := range rec.Residences {
			if known[label] {
				continue
			}
			rows = append(rows, ApplicationRow{
				Label:   label,
				Status:  rec.Status,
				Applied: humanize.RelTime(rec.SubmittedAt, now, "ago", "from now"),
				Local:   true,
			})
		}
	}
	return rows
}
