package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_WithDoesNotMutate(t *testing.T) {
	original := NewRecord([]string{"Date", "Value", "Region"}, []any{"2024-01-28", 70.0, "A"})

	updated := original.With("Value", 40.0)

	v, ok := original.Get("Value")
	require.True(t, ok)
	assert.Equal(t, 70.0, v)

	v, ok = updated.Get("Value")
	require.True(t, ok)
	assert.Equal(t, 40.0, v)
	assert.Equal(t, original.Columns(), updated.Columns())
}

func TestRecord_WithAppendsUnknownColumn(t *testing.T) {
	rec := NewRecord([]string{"A"}, []any{1})
	out := rec.With("B", 2)

	assert.Equal(t, []string{"A", "B"}, out.Columns())
	assert.Equal(t, 1, rec.Len())
}

func TestRecord_RenameKeepsPosition(t *testing.T) {
	rec := NewRecord([]string{"Store", "Date", "Value"}, []any{"S1", "x", 1})
	out := rec.Rename("Date", "Partial Week")

	assert.Equal(t, []string{"Store", "Partial Week", "Value"}, out.Columns())
	assert.Equal(t, []string{"Store", "Date", "Value"}, rec.Columns())
	assert.False(t, out.Has("Date"))
}

func TestNewRecord_PadsMissingValues(t *testing.T) {
	rec := NewRecord([]string{"A", "B", "C"}, []any{"x"})

	assert.Equal(t, []any{"x", nil, nil}, rec.Values())
}

func TestNewTable(t *testing.T) {
	cols := []string{"Date", "Value"}

	tests := []struct {
		name    string
		columns []string
		rows    []Record
		wantErr error
	}{
		{
			name:    "valid table",
			columns: cols,
			rows:    []Record{NewRecord(cols, []any{"d", 1})},
		},
		{
			name:    "empty table",
			columns: cols,
		},
		{
			name:    "duplicate columns",
			columns: []string{"Date", "Date"},
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "row with wrong width",
			columns: cols,
			rows:    []Record{NewRecord([]string{"Date"}, []any{"d"})},
			wantErr: ErrRowShape,
		},
		{
			name:    "row with wrong order",
			columns: cols,
			rows:    []Record{NewRecord([]string{"Value", "Date"}, []any{1, "d"})},
			wantErr: ErrRowShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.columns, tt.rows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.rows), table.Len())
			assert.True(t, table.HasColumn("Value"))
			assert.Equal(t, 1, table.ColumnIndex("Value"))
			assert.Equal(t, -1, table.ColumnIndex("Missing"))
		})
	}
}
