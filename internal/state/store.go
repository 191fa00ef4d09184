package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region store-interface
// Store is the persisted record sequence. Append must be all-or-nothing and
// must leave existing records untouched.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, rec Record) error
	Close() error
}
// #endregion store-interface

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS day_records (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	week        INTEGER NOT NULL,
	day         TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`
// #endregion schema

// #region sqlite-store
// SQLiteStore keeps one row per record, ordered by insertion sequence.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB so the run ledger can share the file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}
// #endregion sqlite-store

// #region sqlite-load
// Load reads every record in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM day_records ORDER BY seq ASC`)
	if err != nil {
		return nil, &CorruptStoreError{Source: s.path, Index: -1, Err: err}
	}
	defer rows.Close()

	var records []Record
	for i := 0; rows.Next(); i++ {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, &CorruptStoreError{Source: s.path, Index: i, Err: err}
		}
		rec, err := decodeRecord(json.RawMessage(payload))
		if err != nil {
			return nil, &CorruptStoreError{Source: s.path, Index: i, Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptStoreError{Source: s.path, Index: -1, Err: err}
	}
	return records, nil
}
// #endregion sqlite-load

// #region sqlite-append
// Append inserts rec in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	payload, err := MarshalRecord(rec)
	if err != nil {
		return &PersistenceError{Source: s.path, Op: "encode", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Source: s.path, Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO day_records (week, day, payload, created_at) VALUES (?, ?, ?, ?)`,
		rec.Key.Week, rec.Key.Day.String(), string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &PersistenceError{Source: s.path, Op: "insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Source: s.path, Op: "commit", Err: err}
	}
	return nil
}
// #endregion sqlite-append

// #region sqlite-import
// Import appends records in order inside one transaction. Used to seed a
// database from a JSON document.
func (s *SQLiteStore) Import(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Source: s.path, Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, rec := range records {
		payload, err := MarshalRecord(rec)
		if err != nil {
			return &PersistenceError{Source: s.path, Op: "encode", Err: err}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO day_records (week, day, payload, created_at) VALUES (?, ?, ?, ?)`,
			rec.Key.Week, rec.Key.Day.String(), string(payload), now,
		)
		if err != nil {
			return &PersistenceError{Source: s.path, Op: "insert", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Source: s.path, Op: "commit", Err: err}
	}
	return nil
}
// #endregion sqlite-import
