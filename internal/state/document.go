package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// #region document-store
// DocumentStore persists records as one JSON array in a single file.
// Every append rewrites the whole file through a temp file and rename.
type DocumentStore struct {
	path string
}

// NewDocumentStore returns a store backed by the JSON file at path.
// The file need not exist yet.
func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// Close is a no-op; the file is only open during Load and Append.
func (s *DocumentStore) Close() error { return nil }
// #endregion document-store

// #region document-load
// Load reads the full document. A missing file is an empty history; a file
// that cannot be read is a *CorruptStoreError.
func (s *DocumentStore) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &CorruptStoreError{Source: s.path, Index: -1, Err: err}
	}
	return DecodeRecords(s.path, data)
}
// #endregion document-load

// #region document-append
// Append re-reads the document, adds rec at the end, and replaces the file.
// The previous file stays in place unless the rename succeeds.
func (s *DocumentStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Source: s.path, Op: "append", Err: err}
	}

	var records []Record
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return &PersistenceError{Source: s.path, Op: "read", Err: err}
	default:
		if records, err = DecodeRecords(s.path, data); err != nil {
			return &PersistenceError{Source: s.path, Op: "read", Err: err}
		}
	}

	out, err := EncodeRecords(append(records, rec))
	if err != nil {
		return &PersistenceError{Source: s.path, Op: "encode", Err: err}
	}
	if err := atomicWrite(s.path, out); err != nil {
		return &PersistenceError{Source: s.path, Op: "write", Err: err}
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}
	success = true
	return nil
}
// #endregion document-append
