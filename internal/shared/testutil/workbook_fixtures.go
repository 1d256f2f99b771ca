// Package testutil holds helpers shared by tests across packages: a capturing slog
// handler and workbook fixtures.
package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used by the workbook fixtures when none is given.
const DefaultSheet = "Weekly"

// NewWorkbook builds an in-memory workbook with rows written from A1 on sheet.
// Cell values keep their Go type, so time.Time cells are stored as dated serials.
func NewWorkbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// WorkbookBytes returns the serialized .xlsx bytes of a fixture workbook.
func WorkbookBytes(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := NewWorkbook(t, sheet, rows).Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook saves a fixture workbook under a temporary directory and returns its path.
func WriteWorkbook(t *testing.T, name, sheet string, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := NewWorkbook(t, sheet, rows).SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
