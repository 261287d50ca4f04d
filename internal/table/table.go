// Package table holds the in-memory column table the enrichment pipeline reshapes:
// typed cells with an explicit missing state, group-by aggregation, key joins and
// delimited-file encoding.
package table

import (
	"fmt"
)

// Table is a named set of equally long, ordered columns.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	cells   [][]Value
	rows    int
}

// New creates an empty table with the given column names.
func New(name string, columns ...string) (*Table, error) {
	t := &Table{
		name:  name,
		index: make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			return nil, fmt.Errorf("table %s: column %q: %w", name, c, ErrColumnConflict)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
		t.cells = append(t.cells, nil)
	}
	return t, nil
}

// Name returns the table name used in error messages.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require returns a MissingColumnError for the first absent column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return &MissingColumnError{Table: t.name, Column: n}
		}
	}
	return nil
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Table: t.name, Column: name}
	}
	out := make([]Value, t.rows)
	copy(out, t.cells[i])
	return out, nil
}

// Get returns a single cell.
func (t *Table) Get(row int, column string) (Value, error) {
	i, ok := t.index[column]
	if !ok {
		return Value{}, &MissingColumnError{Table: t.name, Column: column}
	}
	if row < 0 || row >= t.rows {
		return Value{}, fmt.Errorf("table %s: row %d out of range [0,%d)", t.name, row, t.rows)
	}
	return t.cells[i][row], nil
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.columns))
	for c := range t.columns {
		out[c] = t.cells[c][i]
	}
	return out
}

// AddRow appends one row; values must be in column order.
func (t *Table) AddRow(values []Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("table %s: row has %d values for %d columns: %w", t.name, len(values), len(t.columns), ErrLengthMismatch)
	}
	for c, v := range values {
		t.cells[c] = append(t.cells[c], v)
	}
	t.rows++
	return nil
}

// AddColumn appends a new column. The name must not be taken.
func (t *Table) AddColumn(name string, values []Value) error {
	if t.HasColumn(name) {
		return fmt.Errorf("table %s: column %q: %w", t.name, name, ErrColumnConflict)
	}
	return t.SetColumn(name, values)
}

// SetColumn replaces the named column or appends it when absent.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(t.columns) > 0 && len(values) != t.rows {
		return fmt.Errorf("table %s: column %q has %d values for %d rows: %w", t.name, name, len(values), t.rows, ErrLengthMismatch)
	}
	col := make([]Value, len(values))
	copy(col, values)
	if i, ok := t.index[name]; ok {
		t.cells[i] = col
		return nil
	}
	if len(t.columns) == 0 {
		t.rows = len(values)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.cells = append(t.cells, col)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		name:    t.name,
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		cells:   make([][]Value, len(t.cells)),
		rows:    t.rows,
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, col := range t.cells {
		c.cells[i] = make([]Value, len(col))
		copy(c.cells[i], col)
	}
	return c
}
