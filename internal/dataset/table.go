package dataset

import (
	"fmt"
	"strings"
)

// Table is an ordered, in-memory tabular record set. Column order is
// preserved from the source; rows are row-major slices aligned with
// Columns. Stages treat their input as an immutable snapshot and
// derive new tables via Clone.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// New creates an empty table with the given column labels.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// NumRows returns the row count. A nil table has zero rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// IsEmpty reports whether the table is nil or has no rows.
func (t *Table) IsEmpty() bool {
	return t.NumRows() == 0
}

// ColumnIndex returns the position of the exact column label, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the exact column label exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the values in the named column.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column not found: %s", name)
	}
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(row []Value) {
	aligned := make([]Value, len(t.Columns))
	copy(aligned, row)
	t.Rows = append(t.Rows, aligned)
}

// AddColumn appends a new column with the given values. Rows beyond
// len(values) get null cells.
func (t *Table) AddColumn(name string, values []Value) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		v := Null()
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(t.Rows[i], v)
	}
}

// SetColumn overwrites the values of an existing column.
func (t *Table) SetColumn(name string, values []Value) error {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("column not found: %s", name)
	}
	for i := range t.Rows {
		if i < len(values) {
			t.Rows[i][idx] = values[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	clone := New(t.Columns)
	clone.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		clone.Rows[i] = r
	}
	return clone
}

// RowEqual reports whether two rows are cell-for-cell equal.
func RowEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// rowKey builds a hashable fingerprint of a row for duplicate removal.
func rowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(v.Kind().String())
		b.WriteByte(':')
		b.WriteString(v.String())
		b.WriteByte('\x1f')
	}
	return b.String()
}

// Deduplicate removes exact-duplicate rows, keeping first occurrences.
// It returns the number of rows removed.
func (t *Table) Deduplicate() int {
	if t.NumRows() == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	removed := 0
	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	t.Rows = kept
	return removed
}

// FilterRows keeps only rows for which keep returns true and reports
// the number of rows dropped.
func (t *Table) FilterRows(keep func(row []Value) bool) int {
	if t.NumRows() == 0 {
		return 0
	}
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		} else {
			dropped++
		}
	}
	t.Rows = kept
	return dropped
}
