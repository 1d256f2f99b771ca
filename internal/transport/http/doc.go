// Package http implements the HTTP handlers of the Partial Week Converter.
// Handlers stay thin: they parse the multipart upload, call the conversion
// service and turn the result into a download or an error response.
//
// # Endpoints
//
//	GET  /                      upload form
//	POST /process               form post; the form is re-rendered on failure
//	POST /api/v1/disaggregate   multipart API; failures are RFC 7807 problems
//	GET  /api/health            basic health
//	GET  /api/health/live       liveness with runtime stats
//	GET  /api/health/ready      readiness; 503 when a check fails
//	GET  /api/version           build information
//	GET  /metrics               Prometheus exposition
//
// # Error Handling
//
// API errors are rendered by errors.ErrorHandler as problem details:
//
//	{
//	    "type": "/errors/conversion/missing-column",
//	    "title": "Missing Column",
//	    "status": 422,
//	    "detail": "input file is missing one or more required columns. Expected: Week Start, Amount (missing: Amount)",
//	    "instance": "/api/v1/disaggregate",
//	    "missing_columns": ["Amount"]
//	}
//
// The form endpoint uses the same mapping for its status code and banner text.
//
// # Testing
//
// Handlers are tested with httptest and a testify mock of ConversionServiceInterface.
package http
