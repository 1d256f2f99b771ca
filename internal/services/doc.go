// Package services holds the application layer between the HTTP and CLI front ends
// and the conversion core.
//
// ConversionService validates a request, reads the workbook, runs the
// disaggregation and writes the requested output format. Every call is traced with a
// "conversion.convert" span and counted in the conversion metrics by outcome.
//
// HealthService answers the health, liveness and readiness checks. Readiness runs the
// checks registered with RegisterCheck; the application registers a conversion
// self-test.
package services
