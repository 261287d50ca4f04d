package table

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnConflict is returned when a column name is already taken.
	ErrColumnConflict = errors.New("column already exists")
	// ErrLengthMismatch is returned when a row or column does not fit the table shape.
	ErrLengthMismatch = errors.New("length does not match table shape")
	// ErrUnknownJoinPolicy is returned for join policies other than inner and left.
	ErrUnknownJoinPolicy = errors.New("unknown join policy")
)

// MissingColumnError reports a required column absent from a table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %s: missing required column %q", e.Table, e.Column)
}

// FileError wraps an I/O failure with the operation and the offending path.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// InvalidValueError reports a cell that could not be interpreted as its column requires.
// Row is zero-based and excludes the header.
type InvalidValueError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("table %s: column %q row %d: invalid value %q: %s", e.Table, e.Column, e.Row, e.Value, e.Reason)
}
