// Package api contains the HTTP API contract of the Partial Week Converter.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// Form and multipart field names shared by the upload form, the API and the CLI.
const (
	FieldFile        = "file"
	FieldDateColumn  = "date_column"
	FieldValueColumn = "value_column"
	FieldFormat      = "format"
	FieldSheet       = "sheet"
)

// DisaggregateRequest describes one uploaded workbook and the columns to convert.
type DisaggregateRequest struct {
	Filename    string `json:"filename" validate:"required,xlsxfile"`
	DateColumn  string `json:"date_column" validate:"required,max=255"`
	ValueColumn string `json:"value_column" validate:"required,max=255,nefield=DateColumn"`
	Format      string `json:"format" validate:"omitempty,oneof=xlsx csv"`
	Sheet       string `json:"sheet,omitempty" validate:"max=31"`
}

// DisaggregateSummary is reported in response headers and CLI output after a conversion.
type DisaggregateSummary struct {
	Filename string                     `json:"filename"`
	Format   string                     `json:"format"`
	Stats    domain.DisaggregationStats `json:"stats"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	Runtime   map[string]any    `json:"runtime,omitempty"`
}
