package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumn is returned when a table header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrRowShape is returned when a row does not carry exactly the table's columns in order.
	ErrRowShape = errors.New("row does not match table columns")
)

// Field is a single named cell of a Record.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Record is an ordered mapping from column name to cell value.
// Records are values: every modifier returns a new Record and leaves the receiver untouched.
type Record struct {
	fields []Field
}

// NewRecord builds a record from parallel column and value slices.
// Missing trailing values are stored as nil.
func NewRecord(columns []string, values []any) Record {
	fields := make([]Field, len(columns))
	for i, name := range columns {
		fields[i].Name = name
		if i < len(values) {
			fields[i].Value = values[i]
		}
	}
	return Record{fields: fields}
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Columns returns the field names in order.
func (r Record) Columns() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Values returns the field values in column order.
func (r Record) Values() []any {
	values := make([]any, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

// Fields returns a copy of the record's fields.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	if i := r.index(name); i >= 0 {
		return r.fields[i].Value, true
	}
	return nil, false
}

// Has reports whether the record carries a field called name.
func (r Record) Has(name string) bool {
	return r.index(name) >= 0
}

// With returns a copy of the record with name set to value.
// A name the record does not carry is appended as a new trailing field.
func (r Record) With(name string, value any) Record {
	out := r.clone()
	if i := out.index(name); i >= 0 {
		out.fields[i].Value = value
		return out
	}
	out.fields = append(out.fields, Field{Name: name, Value: value})
	return out
}

// Rename returns a copy of the record with the field from relabeled to to.
// The field keeps its position.
func (r Record) Rename(from, to string) Record {
	out := r.clone()
	if i := out.index(from); i >= 0 {
		out.fields[i].Name = to
	}
	return out
}

func (r Record) clone() Record {
	fields := make([]Field, len(r.fields), len(r.fields)+1)
	copy(fields, r.fields)
	return Record{fields: fields}
}

func (r Record) index(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Table is an ordered sequence of records sharing the same columns in the same order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"-"`
}

// NewTable validates that every row carries exactly columns, in order, and returns the table.
func NewTable(columns []string, rows []Record) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}

	for i, row := range rows {
		if row.Len() != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d fields, table has %d columns", ErrRowShape, i, row.Len(), len(columns))
		}
		for j, f := range row.fields {
			if f.Name != columns[j] {
				return nil, fmt.Errorf("%w: row %d field %d is %q, expected %q", ErrRowShape, i, j, f.Name, columns[j])
			}
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: rows}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of name in the table's columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DisaggregationStats summarizes one disaggregation run.
type DisaggregationStats struct {
	InputRows  int `json:"input_rows"`
	OutputRows int `json:"output_rows"`
	SplitRows  int `json:"split_rows"`
}
