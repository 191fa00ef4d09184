package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS run_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	week          INTEGER,
	day           TEXT,
	stage         TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	payload_json  TEXT,
	created_at    TEXT NOT NULL
);
`
// #endregion schema

// #region ledger
// Ledger records the outcome of every pipeline run in SQLite.
type Ledger struct {
	db    *sql.DB
	owned bool
}

// OpenLedger opens (or creates) a ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	l, err := NewLedger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	l.owned = true
	return l, nil
}

// NewLedger creates the run_log table on an existing database if needed.
func NewLedger(db *sql.DB) (*Ledger, error) {
	if _, err := db.Exec(ledgerSchema); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database if the ledger opened it.
func (l *Ledger) Close() error {
	if l == nil || !l.owned {
		return nil
	}
	return l.db.Close()
}
// #endregion ledger

// #region log-run
// LogRun writes a run entry. A nil ledger discards it.
func (l *Ledger) LogRun(ctx context.Context, entry RunEntry) error {
	if l == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO run_log (run_id, week, day, stage, outcome, reason, payload_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Week,
		nullIfEmpty(entry.Day),
		entry.Stage,
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.PayloadJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}
// #endregion log-run

// #region recent
// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, week, day, stage, outcome, reason, payload_json, created_at
		 FROM run_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var week sql.NullInt64
		var day, reason, payload sql.NullString
		var created string
		if err := rows.Scan(&e.RunID, &week, &day, &e.Stage, &e.Outcome, &reason, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Week = int(week.Int64)
		e.Day = day.String
		e.Reason = reason.String
		e.PayloadJSON = payload.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
