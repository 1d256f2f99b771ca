package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-loop1/partial-week-converter/internal/config"
	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
	customMiddleware "github.com/dev-loop1/partial-week-converter/internal/middleware"
	"github.com/dev-loop1/partial-week-converter/internal/services"
	"github.com/dev-loop1/partial-week-converter/internal/shared/testutil"
	handlers "github.com/dev-loop1/partial-week-converter/internal/transport/http"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Processing.Workers = 2
	cfg.Processing.DateColumn = "Week Start"
	cfg.Processing.ValueColumn = "Amount"
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	application, err := NewApplicationWithLogger(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		application.OTelProviders.Shutdown(context.Background())
	})
	return application, logs
}

func uploadBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(api.FieldDateColumn, "Week Start"))
	require.NoError(t, mw.WriteField(api.FieldValueColumn, "Amount"))
	part, err := mw.CreateFormFile(api.FieldFile, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func weeklyWorkbook(t *testing.T) []byte {
	return testutil.WorkbookBytes(t, "", [][]any{
		{"Week Start", "Amount", "Region"},
		{time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC), 70, "North"},
		{time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), 49, "South"},
	})
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	application, logs := newTestApplication(t, testConfig())

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.ConversionService)
	assert.NotNil(t, application.HealthService)
	assert.Equal(t, "127.0.0.1:0", application.Server.Addr)
	assert.True(t, logs.ContainsMessage("Application starting"))
	assert.True(t, logs.ContainsMessage("ConversionService initialized"))
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0o644))
	t.Setenv(config.ConfigFileEnv, path)

	_, err := NewApplication(nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "invalid server port: 70000")
}

func TestApplication_Routes(t *testing.T) {
	application, _ := newTestApplication(t, testConfig())

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantType    string
		wantContent string
	}{
		{name: "upload form", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantContent: "text/html"},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantContent: "application/json"},
		{name: "live", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK, wantContent: "application/json"},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK, wantContent: "application/json"},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK, wantContent: "application/json"},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantContent: "text/plain"},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound, wantType: apierrors.TypeNotFound},
		{name: "unknown api route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound, wantType: apierrors.TypeNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/process", wantStatus: http.StatusMethodNotAllowed, wantType: apierrors.TypeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(application, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(customMiddleware.RequestIDHeader))
			if tt.wantContent != "" {
				assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantContent)
			}
			if tt.wantType != "" {
				var problem map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, tt.wantType, problem["type"])
			}
		})
	}
}

func TestApplication_Disaggregate(t *testing.T) {
	application, _ := newTestApplication(t, testConfig())

	body, contentType := uploadBody(t, "weekly.xlsx", weeklyWorkbook(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/disaggregate", body)
	req.Header.Set("Content-Type", contentType)

	rec := serve(application, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=weekly_partial_week_output.xlsx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get(handlers.HeaderRowsIn))
	assert.Equal(t, "3", rec.Header().Get(handlers.HeaderRowsOut))
	assert.Equal(t, "1", rec.Header().Get(handlers.HeaderSplit))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Body.Bytes())

	metrics := serve(application, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), "conversions_total")
	assert.Contains(t, metrics.Body.String(), `outcome="`+services.OutcomeSuccess+`"`)
}

func TestApplication_DisaggregateRejections(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 1024
	application, _ := newTestApplication(t, cfg)

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/disaggregate", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(application, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.TypeUnsupportedMedia)
	})

	t.Run("too large", func(t *testing.T) {
		body, contentType := uploadBody(t, "weekly.xlsx", bytes.Repeat([]byte("x"), 4096))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/disaggregate", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(application, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.TypePayloadTooLarge)
	})

	t.Run("wrong extension", func(t *testing.T) {
		body, contentType := uploadBody(t, "weekly.txt", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/disaggregate", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(application, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid file type. Please upload an .xlsx file.")
	})
}

func TestApplication_ProcessForm(t *testing.T) {
	application, _ := newTestApplication(t, testConfig())

	body, contentType := uploadBody(t, "weekly.xlsx", []byte("not a workbook"))
	req := httptest.NewRequest(http.MethodPost, "/process", body)
	req.Header.Set("Content-Type", contentType)

	rec := serve(application, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestApplication_CORSPreflight(t *testing.T) {
	application, _ := newTestApplication(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/disaggregate", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := serve(application, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	application, _ := newTestApplication(t, cfg)

	first := serve(application, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	second := serve(application, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestApplication_StartStop(t *testing.T) {
	application, logs := newTestApplication(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, application.Start(ctx, cancel))

	resp, err := http.Get(fmt.Sprintf("http://%s/api/health/live", application.Addr()))
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), services.StatusAlive)

	require.NoError(t, application.Stop(context.Background()))
	assert.True(t, logs.ContainsMessage("Application shutdown complete"))

	_, err = http.Get(fmt.Sprintf("http://%s/api/health", application.Addr()))
	assert.Error(t, err)
}

func TestApplication_StartAddressInUse(t *testing.T) {
	first, _ := newTestApplication(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, first.Start(ctx, cancel))
	defer first.Stop(context.Background())

	cfg := testConfig()
	cfg.Server.Port = portOf(t, first.Addr())
	second, _ := newTestApplication(t, cfg)

	err := second.Start(ctx, cancel)
	assert.ErrorContains(t, err, "failed to listen")
}

func TestApplication_Run(t *testing.T) {
	application, logs := newTestApplication(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.ContainsMessage("Application started successfully")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func portOf(t *testing.T, addr string) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(addr[strings.LastIndex(addr, ":")+1:], "%d", &port)
	require.NoError(t, err)
	return port
}
