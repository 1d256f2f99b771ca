package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// DefaultSheetName is the worksheet the converted table is written to.
const DefaultSheetName = "Partial_Weeks"

// numFmtTwoDecimals is the built-in "0.00" number format.
const numFmtTwoDecimals = 2

// Number formats of copied date and date-time cells.
const (
	dateFormat     = "yyyy-mm-dd"
	dateTimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// cellStyles are the style IDs of one workbook.
type cellStyles struct {
	share    int
	date     int
	dateTime int
}

// XLSXWriter writes tables as single-sheet workbooks.
type XLSXWriter struct {
	SheetName   string
	ColumnWidth float64
	logger      *slog.Logger
}

// NewXLSXWriter creates a writer targeting DefaultSheetName.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{
		SheetName:   DefaultSheetName,
		ColumnWidth: 16,
		logger:      logger,
	}
}

// Write streams t into a new workbook and serializes it to w.
// The header row is bold; decimal shares are numeric cells shown with two places.
func (xw *XLSXWriter) Write(w io.Writer, t *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := xw.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if len(t.Columns) > 0 && xw.ColumnWidth > 0 {
		if err := sw.SetColWidth(1, len(t.Columns), xw.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]any, len(t.Columns))
	for i, name := range t.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		values := row.Values()
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = xlsxCell(v, styles)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	xw.logger.Debug("Workbook written",
		slog.String("sheet_name", sheet),
		slog.Int("rows", t.Len()))

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile writes t as a workbook at filePath.
func (xw *XLSXWriter) WriteFile(filePath string, t *domain.Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	xw.logger.Info("Writing workbook", slog.String("file_path", filePath), slog.Int("record_count", t.Len()))
	return xw.Write(file, t)
}

func newCellStyles(f *excelize.File) (cellStyles, error) {
	var styles cellStyles
	var err error
	if styles.share, err = f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals}); err != nil {
		return styles, fmt.Errorf("failed to create number style: %w", err)
	}
	date, dateTime := dateFormat, dateTimeFormat
	if styles.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &date}); err != nil {
		return styles, fmt.Errorf("failed to create date style: %w", err)
	}
	if styles.dateTime, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateTime}); err != nil {
		return styles, fmt.Errorf("failed to create date-time style: %w", err)
	}
	return styles, nil
}

func xlsxCell(v any, styles cellStyles) any {
	switch x := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return excelize.Cell{StyleID: styles.share, Value: x.InexactFloat64()}
	case time.Time:
		if hasClock(x) {
			return excelize.Cell{StyleID: styles.dateTime, Value: x}
		}
		return excelize.Cell{StyleID: styles.date, Value: x}
	default:
		return x
	}
}
