package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// ReadCSV loads a comma-delimited file with a header row.
func ReadCSV(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	t, err := Read(f, name)
	if err != nil {
		var mc *MissingColumnError
		var iv *InvalidValueError
		if errors.As(err, &mc) || errors.As(err, &iv) || errors.Is(err, ErrColumnConflict) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return t, nil
}

// Read decodes delimited text with a header row into a table.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table %s: no header row", name)
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t, err := New(name, header...)
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]Value, len(record))
		for i, field := range record {
			row[i] = Parse(field)
		}
		if err := t.AddRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV writes t to path. The file is written beside the target and renamed into
// place so a failed write never leaves a partial file behind.
func WriteCSV(path string, t *Table) error {
	staged, err := StageCSV(path, t)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// StagedFile is a fully written file waiting to be renamed onto its target.
type StagedFile struct {
	path string
	tmp  string
}

// StageCSV writes t to a temporary file beside path. Nothing is visible at path
// until Commit; Discard removes the temporary file.
func StageCSV(path string, t *Table) (*StagedFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &FileError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, &FileError{Op: "create", Path: path, Err: err}
	}

	if err := Write(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, &FileError{Op: "close", Path: path, Err: err}
	}
	return &StagedFile{path: path, tmp: tmp.Name()}, nil
}

// Path returns the target path.
func (f *StagedFile) Path() string {
	return f.path
}

// Commit renames the staged file onto its target.
func (f *StagedFile) Commit() error {
	if err := os.Rename(f.tmp, f.path); err != nil {
		os.Remove(f.tmp)
		return &FileError{Op: "rename", Path: f.path, Err: err}
	}
	return nil
}

// Discard removes the staged file, leaving the target untouched.
func (f *StagedFile) Discard() {
	os.Remove(f.tmp)
}

// Write encodes t as comma-delimited text with a header row. Missing cells are
// written as empty fields.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	record := make([]string, len(t.columns))
	for r := 0; r < t.rows; r++ {
		for c := range t.columns {
			record[c] = t.cells[c][r].String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
