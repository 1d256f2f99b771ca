package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DisplayDateLayout is the DD-Mon-YYYY layout used for the Partial Week column.
const DisplayDateLayout = "02-Jan-2006"

// maxDateSerial is 9999-12-31, the last date a workbook can hold.
const maxDateSerial = 2958465

var errEmptyDate = errors.New("empty date cell")

// dateLayouts are tried in order; month-first wins for ambiguous slash dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate interprets a cell as a calendar date. Time of day is dropped and the
// result is midnight UTC of the same wall-clock date.
func ParseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, errEmptyDate
	case time.Time:
		if x.IsZero() {
			return time.Time{}, errEmptyDate
		}
		return calendarDate(x), nil
	case float64:
		return fromSerial(x)
	case float32:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case int64:
		return fromSerial(float64(x))
	case string:
		return parseDateString(x)
	default:
		return time.Time{}, fmt.Errorf("unsupported date cell type %T", v)
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), nil
		}
	}
	if isYear(s) {
		return time.Time{}, fmt.Errorf("%q is a year, not a date", s)
	}
	// Workbooks saved without a date style carry the raw serial.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

func fromSerial(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || serial < 1 || serial >= maxDateSerial+1 {
		return time.Time{}, fmt.Errorf("invalid date serial %v", serial)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return calendarDate(t), nil
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDisplayDate renders t as DD-Mon-YYYY.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
