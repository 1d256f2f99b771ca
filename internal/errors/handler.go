package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/dev-loop1/partial-week-converter/internal/dataprocessing"
	"github.com/dev-loop1/partial-week-converter/internal/infrastructure"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
)

// Conversion error types
const (
	TypeMissingColumn  = "/errors/conversion/missing-column"
	TypeInvalidDate    = "/errors/conversion/invalid-date"
	TypeInvalidValue   = "/errors/conversion/invalid-value"
	TypeColumnConflict = "/errors/conversion/column-conflict"
	TypeSchemaDrift    = "/errors/conversion/schema-drift"
	TypeUnreadableFile = "/errors/conversion/unreadable-file"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	traceID := requestTraceID(r.Context())
	problem.WithExtension("trace_id", traceID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("problem_type", problem.Type),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details.
// Conversion failures keep their message as the detail since it names the offending row or column.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return h.apiErrorToProblem(PayloadTooLarge(maxBytesErr.Limit), instance)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, ValidationError{Field: fe.Field(), Message: fe.Error()})
		}
		return h.apiErrorToProblem(NewValidationErrors(details), instance)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, instance)
	}

	if problem := conversionProblem(err, instance); problem != nil {
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrTypeParsing {
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeUnreadableFile,
			"Unreadable File", unwrapMessage(appErr), instance).
			WithExtension("error_code", CodeUnprocessableFile)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		instance,
	)
}

// conversionProblem maps the disaggregation error taxonomy. It returns nil for other errors.
func conversionProblem(err error, instance string) *ProblemDetails {
	var (
		problemType string
		title       string
	)
	switch {
	case errors.Is(err, dataprocessing.ErrMissingColumn):
		problemType, title = TypeMissingColumn, "Missing Column"
	case errors.Is(err, dataprocessing.ErrDateParse):
		problemType, title = TypeInvalidDate, "Invalid Date"
	case errors.Is(err, dataprocessing.ErrValueParse):
		problemType, title = TypeInvalidValue, "Invalid Value"
	case errors.Is(err, dataprocessing.ErrColumnConflict):
		problemType, title = TypeColumnConflict, "Column Conflict"
	case errors.Is(err, dataprocessing.ErrSchemaDrift):
		problemType, title = TypeSchemaDrift, "Schema Drift"
	case errors.Is(err, dataprocessing.ErrSheetNotFound), errors.Is(err, dataprocessing.ErrNoHeader):
		problemType, title = TypeUnreadableFile, "Unreadable File"
	default:
		return nil
	}

	problem := NewProblemDetails(http.StatusUnprocessableEntity, problemType, title, unwrapMessage(err), instance).
		WithExtension("error_code", CodeUnprocessableFile)

	var missing *dataprocessing.MissingColumnError
	if errors.As(err, &missing) {
		problem.WithExtension("expected_columns", missing.Expected).
			WithExtension("missing_columns", missing.Missing)
	}
	var dateErr *dataprocessing.DateParseError
	if errors.As(err, &dateErr) {
		problem.WithExtension("row", dateErr.Row+1).WithExtension("column", dateErr.Column)
	}
	var valueErr *dataprocessing.ValueParseError
	if errors.As(err, &valueErr) {
		problem.WithExtension("row", valueErr.Row+1).WithExtension("column", valueErr.Column)
	}
	return problem
}

// unwrapMessage strips AppError decoration so the detail reads like the underlying failure.
func unwrapMessage(err error) string {
	var appErr *AppError
	for errors.As(err, &appErr) && appErr.Cause != nil {
		err = appErr.Cause
	}
	return err.Error()
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, instance string) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest, CodeMissingFile:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodePayloadTooLarge:
		problemType = TypePayloadTooLarge
	case CodeUnsupportedMedia:
		problemType = TypeUnsupportedMedia
	case CodeUnprocessableFile:
		problemType = TypeUnreadableFile
	case CodeRateLimitExceeded:
		problemType = TypeRateLimit
	case CodeServiceUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		instance,
	).WithExtension("error_code", apiErr.ErrorCode)

	if details, ok := apiErr.Details.(ValidationErrors); ok {
		problem.WithExtension("errors", details.Errors)
	} else if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", requestTraceID(r.Context()))

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", requestTraceID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", requestTraceID(r.Context()))

	render.Render(w, r, problem)
}

// requestTraceID prefers the trace ID set by the tracing middleware over the request ID.
func requestTraceID(ctx context.Context) string {
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		return traceID
	}
	return middleware.GetReqID(ctx)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
