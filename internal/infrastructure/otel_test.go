package infrastructure

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-loop1/partial-week-converter/internal/config"
	"github.com/dev-loop1/partial-week-converter/internal/shared/testutil"
	"github.com/dev-loop1/partial-week-converter/pkg/contracts/domain"
)

func testOTelConfig(traceExporter, metricExporter string) *OTelConfig {
	cfg := NewOTelConfig(config.Default().Telemetry)
	cfg.Environment = "test"
	cfg.TraceExporter = traceExporter
	cfg.MetricExporter = metricExporter
	cfg.TraceWriter = io.Discard
	return cfg
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestOTelInitialization(t *testing.T) {
	tests := []struct {
		name        string
		trace       string
		metrics     string
		wantErr     bool
		wantTracing bool
		wantMetrics bool
	}{
		{name: "all disabled", trace: "none", metrics: "none"},
		{name: "stdout tracing", trace: "stdout", metrics: "none", wantTracing: true},
		{name: "prometheus metrics", trace: "none", metrics: "prometheus", wantMetrics: true},
		{name: "both", trace: "stdout", metrics: "prometheus", wantTracing: true, wantMetrics: true},
		{name: "unknown trace exporter", trace: "jaeger", metrics: "none", wantErr: true},
		{name: "unknown metric exporter", trace: "none", metrics: "statsd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)

			providers, err := InitializeOTel(testOTelConfig(tt.trace, tt.metrics), logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)
			assert.True(t, handler.ContainsMessage("Initializing OpenTelemetry"))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("stdout", "none"), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "test")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)

	var buf bytes.Buffer
	NewLogger(&buf, config.LoggingConfig{Level: "info"}).InfoContext(WithTraceID(ctx, "request-id"), "in span")
	assert.Contains(t, buf.String(), traceID, "span trace ID wins over the request ID")

	RecordError(ctx, assert.AnError)
}

func TestConversionMetrics_Prometheus(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", "prometheus"), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewConversionMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	stats := domain.DisaggregationStats{InputRows: 10, OutputRows: 13, SplitRows: 3}
	metrics.RecordConversion(ctx, "success", "xlsx", 120*time.Millisecond, stats)
	metrics.RecordConversion(ctx, "invalid_input", "xlsx", time.Millisecond, domain.DisaggregationStats{})

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, `conversions_total{format="xlsx",otel_scope_name=`)
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, `outcome="invalid_input"`)
	assert.Contains(t, body, "conversion_rows_split_total")
	assert.Contains(t, body, "conversion_duration_seconds_bucket")
}

func TestConversionMetrics_NilIsNoop(t *testing.T) {
	var metrics *ConversionMetrics
	assert.NotPanics(t, func() {
		metrics.RecordConversion(context.Background(), "success", "csv", time.Second, domain.DisaggregationStats{})
	})
}

func TestRuntimeMetrics(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", "prometheus"), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	start := time.Now().Add(-time.Minute)
	require.NoError(t, RegisterRuntimeMetrics(providers.Meter, start))

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "system_goroutines")
	assert.Contains(t, body, "system_uptime_seconds")

	stats := CollectRuntimeStats(start)
	assert.Positive(t, stats.Goroutines)
	assert.GreaterOrEqual(t, stats.Uptime, time.Minute)
	assert.Contains(t, stats.FormatStats(), "heap_alloc_bytes")
}

func TestRepeatedInitializationDoesNotCollide(t *testing.T) {
	for range 2 {
		providers, err := InitializeOTel(testOTelConfig("none", "prometheus"), nil)
		require.NoError(t, err)
		_, err = NewHTTPMetrics(providers.Meter)
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}
