package dataprocessing

import (
	"github.com/shopspring/decimal"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// ExpandRow turns one input record into its output records.
//
// A week that stays inside one month yields a single copy of rec with the parsed start
// date. A split week yields two copies: the first keeps the start date and carries first,
// the second is dated on the first of the next month and carries second. All other fields
// are copied as they are.
func ExpandRow(rec domain.Record, dateCol, valueCol string, d SplitDecision, first, second decimal.Decimal) []domain.Record {
	if !d.Split {
		return []domain.Record{rec.With(dateCol, d.Start)}
	}

	return []domain.Record{
		rec.With(dateCol, d.Start).With(valueCol, first),
		rec.With(dateCol, d.Boundary).With(valueCol, second),
	}
}
