package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/toolshed/internal/model"
)

const returnColumns = `reservation_id, tool_id, tool_condition, return_reason, damages, feedback,
	cleaning_status, missing_parts, maintenance_needed, notes_for_next_user,
	safety_issues, actual_usage_duration, transmitted, submitted_at`

// SaveReturnReport stores the return form payload for a reservation,
// replacing an earlier report.
func SaveReturnReport(ctx context.Context, db *sql.DB, r model.ReturnReport) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO return_reports
		     (reservation_id, tool_id, tool_condition, return_reason, damages, feedback,
		      cleaning_status, missing_parts, maintenance_needed, notes_for_next_user,
		      safety_issues, actual_usage_duration, transmitted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (reservation_id) DO UPDATE SET
		     tool_id = excluded.tool_id,
		     tool_condition = excluded.tool_condition,
		     return_reason = excluded.return_reason,
		     damages = excluded.damages,
		     feedback = excluded.feedback,
		     cleaning_status = excluded.cleaning_status,
		     missing_parts = excluded.missing_parts,
		     maintenance_needed = excluded.maintenance_needed,
		     notes_for_next_user = excluded.notes_for_next_user,
		     safety_issues = excluded.safety_issues,
		     actual_usage_duration = excluded.actual_usage_duration,
		     transmitted = excluded.transmitted,
		     submitted_at = CURRENT_TIMESTAMP`,
		r.ReservationID, r.ToolID, r.Condition, r.ReturnReason, r.Damages, r.Feedback,
		r.CleaningStatus, r.MissingParts, r.MaintenanceNeeded, r.NotesForNextUser,
		r.SafetyIssues, r.ActualUsageDuration, r.Transmitted,
	)
	if err != nil {
		return fmt.Errorf("saving return report: %w", err)
	}
	return nil
}

// MarkReturnReportTransmitted records that the report went out with the
// return request.
func MarkReturnReportTransmitted(ctx context.Context, db *sql.DB, reservationID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE return_reports SET transmitted = 1 WHERE reservation_id = ?`, reservationID,
	)
	if err != nil {
		return fmt.Errorf("marking return report transmitted: %w", err)
	}
	return nil
}

// GetReturnReport returns the report for a reservation, or nil.
func GetReturnReport(ctx context.Context, db *sql.DB, reservationID int64) (*model.ReturnReport, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+returnColumns+` FROM return_reports WHERE reservation_id = ?`, reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting return report: %w", err)
	}
	defer rows.Close()

	reports, err := scanReturnReports(rows)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

// DeleteReturnReport removes the report once its return has been resolved.
func DeleteReturnReport(ctx context.Context, db *sql.DB, reservationID int64) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM return_reports WHERE reservation_id = ?`, reservationID,
	)
	if err != nil {
		return fmt.Errorf("deleting return report: %w", err)
	}
	return nil
}

func scanReturnReports(rows *sql.Rows) ([]model.ReturnReport, error) {
	var reports []model.ReturnReport
	for rows.Next() {
		var r model.ReturnReport
		var damages, feedback, cleaning, missing, maintenance, notes, safety, duration sql.NullString
		if err := rows.Scan(&r.ReservationID, &r.ToolID, &r.Condition, &r.ReturnReason,
			&damages, &feedback, &cleaning, &missing, &maintenance, &notes, &safety, &duration,
			&r.Transmitted, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scanning return report: %w", err)
		}
		r.Damages = damages.String
		r.Feedback = feedback.String
		r.CleaningStatus = cleaning.String
		r.MissingParts = missing.String
		r.MaintenanceNeeded = maintenance.String
		r.NotesForNextUser = notes.String
		r.SafetyIssues = safety.String
		r.ActualUsageDuration = duration.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
