package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

func TestFinalizeTable_RelabelsDateColumnInPlace(t *testing.T) {
	cols := []string{"Store", "Week", "Amount"}
	rows := []domain.Record{
		domain.NewRecord(cols, []any{"S1", date(2024, 1, 28), 40.0}),
		domain.NewRecord(cols, []any{"S1", "2024-02-01", 30.0}),
	}

	table, err := FinalizeTable(rows, cols, "Week")
	require.NoError(t, err)

	assert.Equal(t, []string{"Store", PartialWeekColumn, "Amount"}, table.Columns)
	assert.Equal(t, []any{"S1", "28-Jan-2024", 40.0}, table.Rows[0].Values())
	assert.Equal(t, []any{"S1", "01-Feb-2024", 30.0}, table.Rows[1].Values())
	assert.False(t, table.Rows[0].Has("Week"))
	assert.Equal(t, cols, rows[0].Columns())
}

func TestFinalizeTable_MissingColumn(t *testing.T) {
	cols := []string{"Week", "Amount", "Region"}
	rows := []domain.Record{
		domain.NewRecord(cols, []any{date(2024, 1, 28), 40.0, "North"}),
		domain.NewRecord([]string{"Week", "Amount"}, []any{date(2024, 2, 1), 30.0}),
	}

	_, err := FinalizeTable(rows, cols, "Week")

	var drift *SchemaDriftError
	require.True(t, errors.As(err, &drift))
	assert.Equal(t, 1, drift.Row)
	assert.Equal(t, "Region", drift.Column)
	assert.ErrorIs(t, err, ErrSchemaDrift)
}

func TestFinalizeTable_BadDate(t *testing.T) {
	cols := []string{"Week", "Amount"}
	rows := []domain.Record{domain.NewRecord(cols, []any{"soon", 1.0})}

	_, err := FinalizeTable(rows, cols, "Week")

	assert.ErrorIs(t, err, ErrDateParse)
}
