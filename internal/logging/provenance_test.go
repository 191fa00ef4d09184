package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// #region helpers
func setupLedger(t *testing.T) (*Ledger, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	l, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l, db
}

// #endregion helpers

// #region log-run-tests
func TestLogRun_Success(t *testing.T) {
	l, db := setupLedger(t)
	defer db.Close()

	entry := RunEntry{
		RunID:       "run-1",
		Week:        3,
		Day:         "Tue",
		Stage:       "APPEND",
		Outcome:     "appended",
		PayloadJSON: `{"forecaster":"forest"}`,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := l.LogRun(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM run_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, outcome string
	var reason sql.NullString
	db.QueryRow("SELECT run_id, outcome, reason FROM run_log").Scan(&runID, &outcome, &reason)
	if runID != "run-1" || outcome != "appended" {
		t.Errorf("unexpected row: %q %q", runID, outcome)
	}
	if reason.Valid {
		t.Errorf("expected NULL reason, got %q", reason.String)
	}
}

func TestLogRun_ZeroCreatedAt(t *testing.T) {
	l, db := setupLedger(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Second)
	if err := l.LogRun(context.Background(), RunEntry{RunID: "r", Stage: "LOAD", Outcome: "failed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := l.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].CreatedAt.Before(before) {
		t.Errorf("expected CreatedAt to be filled with now, got %v", entries[0].CreatedAt)
	}
}

func TestLogRun_NilLedger(t *testing.T) {
	var l *Ledger
	if err := l.LogRun(context.Background(), RunEntry{RunID: "r"}); err != nil {
		t.Fatalf("nil ledger should discard, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

// #endregion log-run-tests

// #region recent-tests
func TestRecent_NewestFirst(t *testing.T) {
	l, db := setupLedger(t)
	defer db.Close()

	ctx := context.Background()
	for i, stage := range []string{"LOAD", "FIT", "APPEND"} {
		if err := l.LogRun(ctx, RunEntry{RunID: "r", Week: i, Stage: stage, Outcome: "failed", Reason: "boom"}); err != nil {
			t.Fatalf("log run: %v", err)
		}
	}

	entries, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Stage != "APPEND" || entries[1].Stage != "FIT" {
		t.Errorf("unexpected order: %s, %s", entries[0].Stage, entries[1].Stage)
	}
	if entries[0].Reason != "boom" {
		t.Errorf("expected reason round trip, got %q", entries[0].Reason)
	}
}

func TestOpenLedger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := OpenLedger(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	payload, _ := json.Marshal(RunPayload{Forecaster: "weekday_mean", WindowSize: 7})
	if err := l.LogRun(context.Background(), RunEntry{RunID: "r", Stage: "APPEND", Outcome: "appended", PayloadJSON: string(payload)}); err != nil {
		t.Fatalf("log: %v", err)
	}
	l.Close()

	l, err = OpenLedger(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	entries, err := l.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || !strings.Contains(entries[0].PayloadJSON, "weekday_mean") {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}
}

// #endregion recent-tests

// #region logger-tests
func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("debug", "json", &buf)
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", log.GetLevel())
	}
	log.WithField("stage", "FIT").Debug("fitting")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["stage"] != "FIT" {
		t.Errorf("expected stage field, got %v", line["stage"])
	}
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	log := NewLogger("loud", "text", &bytes.Buffer{})
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", log.GetLevel())
	}
}

// #endregion logger-tests
