package load

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when there are no rows or no source columns to
// load.
var ErrEmptyInput = errors.New("no rows or source columns to load")

// ErrNoMappedColumns is returned when a column mapping matches zero source
// columns.
var ErrNoMappedColumns = errors.New("no source columns matched the column mapping")

// ColumnCountMismatchError reports a target column list whose length differs
// from the source column list.
type ColumnCountMismatchError struct {
	Source int
	Target int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("column count mismatch: %d source vs %d target columns", e.Source, e.Target)
}

// SchemaError reports a DDL failure while creating the target table.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("create table %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// LoadError reports a failed write against the target table. When Batch is
// non-zero the failure happened mid-load: batches before it are already
// committed and the target table is partially populated.
type LoadError struct {
	Table     string
	Batch     int // 1-based index of the failing batch, 0 if not batch-related
	Committed int // rows durably committed before the failure
	Err       error
}

func (e *LoadError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("load into %s: batch %d failed after %d rows committed (table may be partially loaded): %v",
			e.Table, e.Batch, e.Committed, e.Err)
	}
	return fmt.Sprintf("load into %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
