package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the disaggregation core. Typed errors below match them with errors.Is.
var (
	ErrMissingColumn  = errors.New("missing required column")
	ErrDateParse      = errors.New("invalid date value")
	ErrValueParse     = errors.New("invalid numeric value")
	ErrSchemaDrift    = errors.New("row does not match output schema")
	ErrColumnConflict = errors.New("conflicting column configuration")
)

// MissingColumnError reports that the configured date and/or value column is absent.
type MissingColumnError struct {
	Expected []string
	Missing  []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("input file is missing one or more required columns. Expected: %s (missing: %s)",
		strings.Join(e.Expected, ", "), strings.Join(e.Missing, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// DateParseError reports a date cell that is not a calendar date.
// Row is the zero-based data row index; messages show it one-based.
type DateParseError struct {
	Row    int
	Column string
	Value  any
	Cause  error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot interpret %s as a date", e.Row+1, e.Column, describeValue(e.Value))
}

func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }

func (e *DateParseError) Unwrap() error { return e.Cause }

// ValueParseError reports a value cell of a split week that is not a finite number.
type ValueParseError struct {
	Row    int
	Column string
	Value  any
	Cause  error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot interpret %s as a number", e.Row+1, e.Column, describeValue(e.Value))
}

func (e *ValueParseError) Is(target error) bool { return target == ErrValueParse }

func (e *ValueParseError) Unwrap() error { return e.Cause }

// SchemaDriftError reports an expanded row that lost a column of the input schema.
type SchemaDriftError struct {
	Row    int
	Column string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("output row %d is missing column %q", e.Row+1, e.Column)
}

func (e *SchemaDriftError) Unwrap() error { return ErrSchemaDrift }

// ColumnConflictError reports a column configuration that cannot produce a valid output table.
type ColumnConflictError struct {
	Column string
	Reason string
}

func (e *ColumnConflictError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}

func (e *ColumnConflictError) Unwrap() error { return ErrColumnConflict }

func describeValue(v any) string {
	if v == nil {
		return "an empty cell"
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}
