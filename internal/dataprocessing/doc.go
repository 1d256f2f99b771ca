// Package dataprocessing converts weekly tables into partial-week tables.
// It covers the whole path from an uploaded workbook to the disaggregated rows.
//
// # Architecture
//
// The package is split into small steps, each usable on its own:
//
//  1. Parser: reads .xlsx workbooks (and CSV) into a domain.Table
//  2. Period: decides whether a 7-day week crosses a calendar month
//  3. Apportion: divides a week's value by day count with exact conservation
//  4. Expander: turns one record into one or two output records
//  5. Schema: restores column order, formats dates and relabels the date column
//
// Disaggregator ties them together.
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("weekly.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	out, err := dataprocessing.Disaggregate(table, "Week Start", "Amount")
//
// For large inputs, a Disaggregator with Workers > 1 expands rows concurrently while
// keeping the output in input order:
//
//	d := dataprocessing.NewDisaggregator(dataprocessing.Options{Workers: 8}, logger)
//	out, stats, err := d.DisaggregateWithStats(ctx, table, "Week Start", "Amount")
//
// # Error Handling
//
// Failures are typed and match a sentinel with errors.Is:
//
//	- MissingColumnError (ErrMissingColumn) when a configured column is absent
//	- DateParseError (ErrDateParse) for a date cell that is not a calendar date
//	- ValueParseError (ErrValueParse) for a non-numeric value in a split week
//	- ColumnConflictError (ErrColumnConflict) for unusable column choices
//	- SchemaDriftError (ErrSchemaDrift) if an output row loses a column
//
// Row numbers in messages are one-based data rows, not counting the header.
package dataprocessing
