package state

import "fmt"

// #region corrupt-store
// CorruptStoreError reports persisted data that does not decode into records.
// Index is the offending entry, or -1 when the document as a whole is malformed.
type CorruptStoreError struct {
	Source string
	Index  int
	Err    error
}

func (e *CorruptStoreError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("corrupt store %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("corrupt store %s: entry %d: %v", e.Source, e.Index, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }
// #endregion corrupt-store

// #region persistence
// PersistenceError reports a failed write-back. The store is left as it was.
type PersistenceError struct {
	Source string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
// #endregion persistence
