package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// Options tunes a Disaggregator.
type Options struct {
	// Workers bounds how many rows are expanded concurrently. Values below 2 run sequentially.
	Workers int
}

// Disaggregator splits fiscal weeks that cross a month boundary into two partial weeks.
// It holds no per-run state and is safe for concurrent use.
type Disaggregator struct {
	opts   Options
	logger *slog.Logger
}

// NewDisaggregator creates a disaggregator. A nil logger falls back to slog.Default.
func NewDisaggregator(opts Options, logger *slog.Logger) *Disaggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Disaggregator{
		opts:   opts,
		logger: logger.With(slog.String("component", "disaggregator")),
	}
}

// Disaggregate runs a sequential disaggregation of table.
func Disaggregate(table *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
	out, _, err := NewDisaggregator(Options{}, nil).DisaggregateWithStats(context.Background(), table, dateCol, valueCol)
	return out, err
}

// DisaggregateWithStats validates the configured columns, splits every week that crosses a
// month boundary and returns the output table with run statistics. The input table is
// never modified.
func (d *Disaggregator) DisaggregateWithStats(ctx context.Context, table *domain.Table, dateCol, valueCol string) (*domain.Table, domain.DisaggregationStats, error) {
	var stats domain.DisaggregationStats
	if table == nil {
		table = &domain.Table{}
	}

	if err := validateColumns(table, dateCol, valueCol); err != nil {
		return nil, stats, err
	}

	dates, err := parseDates(table, dateCol)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	expanded, err := d.expandRows(ctx, table, dates, dateCol, valueCol)
	if err != nil {
		return nil, stats, err
	}

	rows := make([]domain.Record, 0, len(table.Rows))
	for _, group := range expanded {
		if len(group) > 1 {
			stats.SplitRows++
		}
		rows = append(rows, group...)
	}

	out, err := FinalizeTable(rows, table.Columns, dateCol)
	if err != nil {
		return nil, stats, err
	}

	stats.InputRows = table.Len()
	stats.OutputRows = out.Len()

	d.logger.DebugContext(ctx, "disaggregation complete",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("split_rows", stats.SplitRows),
		slog.Duration("duration", time.Since(start)))

	return out, stats, nil
}

// expandRows expands every row into its own slot so results can be concatenated in
// input order however the work was scheduled.
func (d *Disaggregator) expandRows(ctx context.Context, table *domain.Table, dates []time.Time, dateCol, valueCol string) ([][]domain.Record, error) {
	expanded := make([][]domain.Record, len(table.Rows))
	errs := make([]error, len(table.Rows))

	expand := func(i int) {
		expanded[i], errs[i] = expandOne(i, table.Rows[i], dates[i], dateCol, valueCol)
	}

	if d.opts.Workers < 2 || len(table.Rows) < 2 {
		for i := range table.Rows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			expand(i)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return expanded, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i := range table.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			expand(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Report the earliest failing row, not whichever worker failed first.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

func expandOne(i int, rec domain.Record, start time.Time, dateCol, valueCol string) ([]domain.Record, error) {
	decision := AnalyzeWeek(start)
	if !decision.Split {
		return ExpandRow(rec, dateCol, valueCol, decision, decimal.Zero, decimal.Zero), nil
	}

	raw, _ := rec.Get(valueCol)
	value, err := ParseValue(raw)
	if err != nil {
		return nil, &ValueParseError{Row: i, Column: valueCol, Value: raw, Cause: err}
	}

	first, second := Apportion(value, decision.FirstPartDays)
	return ExpandRow(rec, dateCol, valueCol, decision, first, second), nil
}

func validateColumns(table *domain.Table, dateCol, valueCol string) error {
	var missing []string
	for _, col := range []string{dateCol, valueCol} {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Expected: []string{dateCol, valueCol}, Missing: missing}
	}

	if dateCol == valueCol {
		return &ColumnConflictError{Column: dateCol, Reason: "date and value columns must be different"}
	}
	if dateCol != PartialWeekColumn && table.HasColumn(PartialWeekColumn) {
		return &ColumnConflictError{Column: PartialWeekColumn, Reason: "input already has a column with the output date label"}
	}
	return nil
}

func parseDates(table *domain.Table, dateCol string) ([]time.Time, error) {
	dates := make([]time.Time, len(table.Rows))
	for i, row := range table.Rows {
		raw, _ := row.Get(dateCol)
		t, err := ParseDate(raw)
		if err != nil {
			return nil, &DateParseError{Row: i, Column: dateCol, Value: raw, Cause: err}
		}
		dates[i] = t
	}
	return dates, nil
}
