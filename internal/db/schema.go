package db

import (
	"database/sql"
	"fmt"
)

// schema is the local state schema. The backend owns tools, reservations
// and submissions; this file only keeps the session and the intake form
// payloads the REST contract has no field for.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checkout_declarations (
    reservation_id       INTEGER PRIMARY KEY,
    tool_id              INTEGER NOT NULL,
    full_name            TEXT NOT NULL,
    address              TEXT NOT NULL,
    phone                TEXT NOT NULL,
    expected_return_date TEXT NOT NULL,
    declared_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS return_reports (
    reservation_id        INTEGER PRIMARY KEY,
    tool_id               INTEGER NOT NULL,
    tool_condition        TEXT NOT NULL CHECK (tool_condition IN ('excellent', 'good', 'fair', 'poor')),
    return_reason         TEXT NOT NULL,
    damages               TEXT,
    feedback              TEXT,
    cleaning_status       TEXT,
    missing_parts         TEXT,
    maintenance_needed    TEXT,
    notes_for_next_user   TEXT,
    safety_issues         TEXT,
    actual_usage_duration TEXT,
    transmitted           INTEGER NOT NULL DEFAULT 0,
    submitted_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: admin review looks reports up by tool as well.
	`CREATE INDEX IF NOT EXISTS idx_return_reports_tool ON return_reports(tool_id)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist
// and applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
