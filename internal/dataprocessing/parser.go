package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// ErrNoHeader is returned when a sheet has no non-blank row to use as the header.
var ErrNoHeader = errors.New("no header row found")

// ErrSheetNotFound is returned when ParseOptions.Sheet names no sheet of the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ParseOptions selects what part of a workbook is read.
type ParseOptions struct {
	// Sheet names the worksheet to read. Empty means the first sheet.
	Sheet string
}

// ParseFile reads a workbook from disk into a Table.
func ParseFile(filePath string, opts ParseOptions) (*domain.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

// ParseWorkbook reads an .xlsx stream into a Table.
func ParseWorkbook(r io.Reader, opts ParseOptions) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

func parseWorkbook(f *excelize.File, opts ParseOptions) (*domain.Table, error) {
	sheetName, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	headerRow := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, ErrNoHeader)
	}

	width := 0
	for _, row := range rows[headerRow:] {
		width = max(width, len(row))
	}
	columns := headerNames(rows[headerRow], width)

	cells := newCellReader(f, sheetName)
	records := make([]domain.Record, 0, len(rows)-headerRow-1)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		values := make([]any, width)
		for c := 0; c < len(row) && c < width; c++ {
			values[c] = cells.typed(c, i, row[c])
		}
		records = append(records, domain.NewRecord(columns, values))
	}

	slog.Debug("Workbook parsed",
		slog.String("sheet_name", sheetName),
		slog.Int("header_row", headerRow),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(records)))

	return domain.NewTable(columns, records)
}

func resolveSheet(f *excelize.File, want string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == want {
			return name, nil
		}
	}
	// Exported sheet names often pick up stray whitespace.
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(want)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q: %w (available: %s)", want, ErrSheetNotFound, strings.Join(sheets, ", "))
}

// headerNames builds unique column names. Blank header cells become "Unnamed: <index>" and
// repeated names get ".1", ".2", ... suffixes.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	repeats := make(map[string]int, width)
	for i := range width {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		candidate := name
		for used[candidate] {
			repeats[name]++
			candidate = name + "." + strconv.Itoa(repeats[name])
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}

// builtInDateFormats are the built-in number formats that display a calendar date.
var builtInDateFormats = map[int]bool{14: true, 15: true, 16: true, 17: true, 22: true}

// cellReader types the raw cell strings of one sheet.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	cr := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cr.date1904 = *props.Date1904
	}
	return cr
}

// typed converts a raw cell string into nil, bool, float64, time.Time or string.
// Numbers shown with a date format become time.Time so they are written back as dates.
func (cr *cellReader) typed(col, row int, raw string) any {
	if raw == "" {
		return nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}
	cellType, err := cr.f.GetCellType(cr.sheet, axis)
	if err != nil {
		return raw
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if cr.isDateStyled(axis) {
			if t, err := excelize.ExcelDateToTime(v, cr.date1904); err == nil {
				return t
			}
		}
		return v
	}
	return raw
}

func (cr *cellReader) isDateStyled(axis string) bool {
	styleID, err := cr.f.GetCellStyle(cr.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := cr.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := cr.f.GetStyle(styleID); err == nil {
		isDate = builtInDateFormats[style.NumFmt]
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		}
	}
	cr.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a custom number format code shows a date: it has a
// year or day token outside quoted literals, bracketed sections and escapes.
func isDateFormat(code string) bool {
	section, _, _ := strings.Cut(code, ";")
	inQuote, inBracket := false, false
	for i := 0; i < len(section); i++ {
		c := section[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		case c == 'y', c == 'Y', c == 'd', c == 'D':
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseCSV reads comma-separated text with a header row into a Table.
// Cells stay strings; empty cells become nil.
func ParseCSV(r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	headerRow := -1
	for i, row := range all {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, fmt.Errorf("csv: %w", ErrNoHeader)
	}

	header := all[headerRow]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	width := 0
	for _, row := range all[headerRow:] {
		width = max(width, len(row))
	}
	columns := headerNames(header, width)

	records := make([]domain.Record, 0, len(all)-headerRow-1)
	for _, row := range all[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		values := make([]any, width)
		for c := 0; c < len(row) && c < width; c++ {
			if row[c] != "" {
				values[c] = row[c]
			}
		}
		records = append(records, domain.NewRecord(columns, values))
	}

	return domain.NewTable(columns, records)
}
