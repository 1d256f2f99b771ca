package exporter

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(nil).Write(&buf, partialWeekTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Partial Week", "Amount", "Region"}, rows[0])
	assert.Equal(t, []string{"28-Jan-2024", "40.00", "North, East"}, rows[1])
	assert.Equal(t, []string{"01-Feb-2024", "30.00"}, rows[2])
	assert.Equal(t, "49", rows[3][1])

	raw, err := f.GetCellValue(DefaultSheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "40", raw, "shares are stored as numbers")

	cellType, err := f.GetCellType(DefaultSheetName, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	styleID, err := f.GetCellStyle(DefaultSheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestXLSXWriter_DateCells(t *testing.T) {
	columns := []string{"Partial Week", "Invoice Date", "Posted At"}
	table, err := domain.NewTable(columns, []domain.Record{
		domain.NewRecord(columns, []any{
			"04-Mar-2024",
			time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 9, 13, 30, 0, 0, time.UTC),
		}),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(nil).Write(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"04-Mar-2024", "2024-03-09", "2024-03-09 13:30:00"}, rows[1])

	raw, err := f.GetCellValue(DefaultSheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "45360", raw, "dates are stored as serials")

	styleID, err := f.GetCellStyle(DefaultSheetName, "B2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, dateFormat, *style.CustomNumFmt)
}

func TestXLSXWriter_CustomSheetAndEmptyTable(t *testing.T) {
	table, err := domain.NewTable([]string{"Partial Week", "Value"}, nil)
	require.NoError(t, err)

	w := NewXLSXWriter(nil)
	w.SheetName = "Output"
	path := filepath.Join(t.TempDir(), "out", "empty.xlsx")
	require.NoError(t, w.WriteFile(path, table))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Output")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Partial Week", "Value"}}, rows)
}
