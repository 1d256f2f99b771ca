package exporter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "string", input: "28-Jan-2024", expected: "28-Jan-2024"},
		{name: "whole decimal keeps two places", input: decimal.RequireFromString("40"), expected: "40.00"},
		{name: "decimal with one place", input: decimal.RequireFromString("13.4"), expected: "13.40"},
		{name: "negative decimal", input: decimal.RequireFromString("-85.71"), expected: "-85.71"},
		{name: "float integer", input: 49.0, expected: "49"},
		{name: "float decimal", input: 123.456, expected: "123.456"},
		{name: "small float", input: 0.000001, expected: "0.000001"},
		{name: "int", input: 7, expected: "7"},
		{name: "int64", input: int64(-3), expected: "-3"},
		{name: "bool", input: true, expected: "true"},
		{name: "time", input: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), expected: "2024-02-01"},
		{name: "time with clock", input: time.Date(2024, 2, 1, 13, 30, 0, 0, time.UTC), expected: "2024-02-01 13:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatCell(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatXLSX},
		{input: "xlsx", want: FormatXLSX},
		{input: " CSV ", want: FormatCSV},
		{input: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		input    string
		format   Format
		expected string
	}{
		{input: "weekly.xlsx", format: FormatXLSX, expected: "weekly_partial_week_output.xlsx"},
		{input: "weekly.xlsx", format: FormatCSV, expected: "weekly_partial_week_output.csv"},
		{input: "reports/2024 Q1.xlsx", format: FormatXLSX, expected: "2024 Q1_partial_week_output.xlsx"},
		{input: `C:\Users\me\sales.data.xlsx`, format: FormatXLSX, expected: "sales.data_partial_week_output.xlsx"},
		{input: "", format: FormatXLSX, expected: "converted_partial_week_output.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputFilename(tt.input, tt.format))
		})
	}
}

func TestIsOutputName(t *testing.T) {
	assert.True(t, IsOutputName("weekly_partial_week_output.xlsx"))
	assert.True(t, IsOutputName("/tmp/out/weekly_partial_week_output.csv"))
	assert.False(t, IsOutputName("weekly.xlsx"))
	assert.False(t, IsOutputName("partial_week_output_notes.xlsx"))
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
