// Package exporter writes converted tables as .xlsx workbooks or CSV files.
//
// XLSXWriter streams rows through excelize into a single Partial_Weeks sheet. CSVWriter
// writes the same table as CSV, optionally with a UTF-8 BOM so Excel detects the encoding.
// OutputFilename derives the download name from the uploaded file:
//
//	name := exporter.OutputFilename("weekly.xlsx", exporter.FormatXLSX)
//	// weekly_partial_week_output.xlsx
package exporter
