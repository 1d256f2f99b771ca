package dataprocessing

import (
	"time"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// PartialWeekColumn is the output label of the date column.
const PartialWeekColumn = "Partial Week"

// OutputColumns returns columns with dateCol relabeled, keeping its position.
func OutputColumns(columns []string, dateCol string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		if c == dateCol {
			c = PartialWeekColumn
		}
		out[i] = c
	}
	return out
}

// FinalizeTable formats the date column of the expanded rows as DD-Mon-YYYY and
// relabels it Partial Week in place. Every row must still carry all of columns.
func FinalizeTable(rows []domain.Record, columns []string, dateCol string) (*domain.Table, error) {
	out := make([]domain.Record, len(rows))

	for i, row := range rows {
		for _, col := range columns {
			if !row.Has(col) {
				return nil, &SchemaDriftError{Row: i, Column: col}
			}
		}
		v, _ := row.Get(dateCol)
		formatted, err := displayDate(v)
		if err != nil {
			return nil, &DateParseError{Row: i, Column: dateCol, Value: v, Cause: err}
		}
		out[i] = row.With(dateCol, formatted).Rename(dateCol, PartialWeekColumn)
	}

	return domain.NewTable(OutputColumns(columns, dateCol), out)
}

func displayDate(v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		return FormatDisplayDate(t), nil
	}
	t, err := ParseDate(v)
	if err != nil {
		return "", err
	}
	return FormatDisplayDate(t), nil
}
