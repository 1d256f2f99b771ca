package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/dev-loop1/partial-week-converter/internal/config"
	"github.com/dev-loop1/partial-week-converter/internal/dataprocessing"
	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
	"github.com/dev-loop1/partial-week-converter/internal/exporter"
	"github.com/dev-loop1/partial-week-converter/internal/infrastructure"
	"github.com/dev-loop1/partial-week-converter/internal/validation"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

// ConversionResult is a finished conversion ready to be downloaded or saved.
type ConversionResult struct {
	Filename    string
	ContentType string
	Format      exporter.Format
	Body        []byte
	Stats       domain.DisaggregationStats

	table *domain.Table
}

// Summary returns the API summary of the result.
func (r *ConversionResult) Summary() api.DisaggregateSummary {
	return api.DisaggregateSummary{
		Filename: r.Filename,
		Format:   string(r.Format),
		Stats:    r.Stats,
	}
}

// ConversionService turns uploaded weekly workbooks into partial-week outputs.
type ConversionService struct {
	cfg           config.ProcessingConfig
	validator     *validation.RequestValidator
	files         *validation.FileValidator
	disaggregator *dataprocessing.Disaggregator
	xlsx          *exporter.XLSXWriter
	csv           *exporter.CSVWriter
	metrics       *infrastructure.ConversionMetrics
	tracer        trace.Tracer
	logger        *slog.Logger
}

// NewConversionService creates a conversion service. Nil metrics or tracer disable instrumentation.
func NewConversionService(cfg config.ProcessingConfig, metrics *infrastructure.ConversionMetrics, tracer trace.Tracer, logger *slog.Logger) *ConversionService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}

	logger.Info("ConversionService initialized",
		slog.Int("workers", cfg.Workers),
		slog.String("output_format", cfg.OutputFormat),
		slog.String("sheet", cfg.Sheet))

	return &ConversionService{
		cfg:           cfg,
		validator:     validation.NewRequestValidator(),
		files:         validation.NewFileValidator(logger),
		disaggregator: dataprocessing.NewDisaggregator(dataprocessing.Options{Workers: cfg.Workers}, logger),
		xlsx:          exporter.NewXLSXWriter(logger),
		csv:           exporter.NewCSVWriter(logger),
		metrics:       metrics,
		tracer:        tracer,
		logger:        logger.With(slog.String("component", "conversion_service")),
	}
}

// Defaults fills an unset format and sheet from configuration.
func (s *ConversionService) Defaults(req api.DisaggregateRequest) api.DisaggregateRequest {
	if req.Format == "" {
		req.Format = s.cfg.OutputFormat
	}
	if req.Sheet == "" {
		req.Sheet = s.cfg.Sheet
	}
	return req
}

// Convert reads an uploaded workbook from r and returns the converted file.
func (s *ConversionService) Convert(ctx context.Context, req api.DisaggregateRequest, r io.Reader) (*ConversionResult, error) {
	req = s.Defaults(req)
	return s.run(ctx, req, s.validator.ValidateStruct, func() (*domain.Table, error) {
		return dataprocessing.ParseWorkbook(r, dataprocessing.ParseOptions{Sheet: req.Sheet})
	})
}

// ConvertFile converts the workbook or CSV file at path. req.Filename is replaced by the base name of path.
func (s *ConversionService) ConvertFile(ctx context.Context, req api.DisaggregateRequest, path string) (*ConversionResult, error) {
	req = s.Defaults(req)
	req.Filename = filepath.Base(path)

	validate := func(v any) error {
		if err := s.files.ValidateInputFile(path); err != nil {
			return apierrors.ErrValidation(api.FieldFile, err.Error())
		}
		return s.validator.ValidateStructExcept(v, "Filename")
	}

	return s.run(ctx, req, validate, func() (*domain.Table, error) {
		if validation.IsCSVName(path) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return dataprocessing.ParseCSV(f)
		}
		return dataprocessing.ParseFile(path, dataprocessing.ParseOptions{Sheet: req.Sheet})
	})
}

// WriteResult saves the conversion to path, creating its directory if needed.
// Results produced by this service are re-rendered from their table; others are
// written from Body as is.
func (s *ConversionService) WriteResult(result *ConversionResult, path string) error {
	if err := s.files.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return apierrors.NewStorageError("failed to prepare output directory", err)
	}

	var err error
	switch {
	case result.table == nil:
		err = os.WriteFile(path, result.Body, 0644)
	case result.Format == exporter.FormatCSV:
		err = s.csv.WriteTableFile(path, result.table)
	default:
		err = s.xlsx.WriteFile(path, result.table)
	}
	if err != nil {
		return apierrors.NewStorageError("failed to write output file", err)
	}

	s.logger.Info("Output written",
		slog.String("path", path),
		slog.Int("bytes", len(result.Body)))
	return nil
}

func (s *ConversionService) run(ctx context.Context, req api.DisaggregateRequest, validate func(any) error, load func() (*domain.Table, error)) (result *ConversionResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "conversion.convert",
		trace.WithAttributes(
			attribute.String("conversion.filename", req.Filename),
			attribute.String("conversion.date_column", req.DateColumn),
			attribute.String("conversion.value_column", req.ValueColumn),
			attribute.String("conversion.format", req.Format),
		),
	)
	defer span.End()

	logger := s.logger.With(slog.String("filename", req.Filename))
	outcome := OutcomeSuccess
	var stats domain.DisaggregationStats

	defer func() {
		s.metrics.RecordConversion(ctx, outcome, req.Format, time.Since(start), stats)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			logger.WarnContext(ctx, "Conversion failed",
				slog.String("outcome", outcome),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
		}
	}()

	if err := validate(req); err != nil {
		outcome = OutcomeInvalidRequest
		return nil, err
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		outcome = OutcomeInvalidRequest
		return nil, apierrors.ErrValidation(api.FieldFormat, err.Error())
	}

	table, err := load()
	if err != nil {
		outcome = OutcomeUnreadableFile
		return nil, apierrors.NewParsingError("failed to read input file", err).
			WithContext("filename", req.Filename)
	}
	span.AddEvent("input parsed", trace.WithAttributes(
		attribute.Int("rows", table.Len()),
		attribute.Int("columns", len(table.Columns)),
	))

	out, stats, err := s.disaggregator.DisaggregateWithStats(ctx, table, req.DateColumn, req.ValueColumn)
	if err != nil {
		outcome = OutcomeInvalidInput
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			outcome = OutcomeTimeout
			return nil, err
		}
		return nil, apierrors.NewConversionError("failed to convert weekly data", err).
			WithContext("filename", req.Filename)
	}

	var buf bytes.Buffer
	switch format {
	case exporter.FormatCSV:
		err = s.csv.WriteTable(&buf, out, exporter.WriteOptions{BOMPrefix: true})
	default:
		err = s.xlsx.Write(&buf, out)
	}
	if err != nil {
		outcome = OutcomeWriteFailed
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to write %s output", format), err)
	}

	span.SetAttributes(
		attribute.Int("conversion.rows_in", stats.InputRows),
		attribute.Int("conversion.rows_out", stats.OutputRows),
		attribute.Int("conversion.rows_split", stats.SplitRows),
	)
	logger.InfoContext(ctx, "Conversion completed",
		slog.String("format", string(format)),
		slog.Int("rows_in", stats.InputRows),
		slog.Int("rows_out", stats.OutputRows),
		slog.Int("rows_split", stats.SplitRows),
		slog.Int("bytes", buf.Len()),
		slog.Duration("duration", time.Since(start)))

	return &ConversionResult{
		Filename:    exporter.OutputFilename(req.Filename, format),
		ContentType: format.ContentType(),
		Format:      format,
		Body:        buf.Bytes(),
		Stats:       stats,
		table:       out,
	}, nil
}

// SelfTest converts a one-row table crossing a month boundary and checks the split.
// It backs the readiness check.
func (s *ConversionService) SelfTest(ctx context.Context) error {
	columns := []string{"Week", "Value"}
	table, err := domain.NewTable(columns, []domain.Record{
		domain.NewRecord(columns, []any{time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC), 7.0}),
	})
	if err != nil {
		return err
	}

	out, _, err := s.disaggregator.DisaggregateWithStats(ctx, table, "Week", "Value")
	if err != nil {
		return fmt.Errorf("self-test conversion failed: %w", err)
	}
	if out.Len() != 2 {
		return fmt.Errorf("self-test conversion produced %d rows, want 2", out.Len())
	}
	return s.xlsx.Write(io.Discard, out)
}
