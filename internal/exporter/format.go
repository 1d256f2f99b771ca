package exporter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// outputSuffix is appended to the input base name to build the download name.
const outputSuffix = "_partial_week_output"

// ParseFormat maps a user-supplied format name to a Format. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want xlsx or csv)", s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// OutputFilename derives the converted file name from the uploaded one:
// "weekly.xlsx" becomes "weekly_partial_week_output.xlsx".
func OutputFilename(input string, f Format) string {
	base := filepath.Base(strings.ReplaceAll(input, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "converted"
	}
	return base + outputSuffix + "." + string(f)
}

// IsOutputName reports whether name looks like a file produced by OutputFilename.
func IsOutputName(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), outputSuffix)
}

// formatDecimal renders a share with exactly 2 decimal places, so 13.4 appears as 13.40.
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatFloat formats a float64 without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatCell renders any table cell as CSV text. Empty cells become "".
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return formatDecimal(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return formatBool(x)
	case time.Time:
		if hasClock(x) {
			return x.Format(time.DateTime)
		}
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

// hasClock reports whether t carries a time of day.
func hasClock(t time.Time) bool {
	h, m, sec := t.Clock()
	return h != 0 || m != 0 || sec != 0 || t.Nanosecond() != 0
}
