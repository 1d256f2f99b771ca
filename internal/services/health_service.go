package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dev-loop1/partial-week-converter/internal/infrastructure"
	"github.com/dev-loop1/partial-week-converter/pkg/contracts"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// CheckFunc reports whether a dependency is ready. A nil error means ready.
type CheckFunc func(ctx context.Context) error

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewHealthService creates a new health service
func NewHealthService(version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named readiness check.
func (hs *HealthService) RegisterCheck(name string, check CheckFunc) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.checks[name] = check
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return api.HealthResponse{
		Status:    StatusOK,
		Version:   hs.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// ReadinessCheck runs every registered check. Any failure makes the service not ready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	hs.mu.RLock()
	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(hs.checks))
	for name, check := range hs.checks {
		checks[name] = check
	}
	hs.mu.RUnlock()
	sort.Strings(names)

	status := api.HealthResponse{
		Status:    StatusReady,
		Version:   hs.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string, len(names)),
	}

	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			status.Checks[name] = err.Error()
			status.Status = StatusNotReady
			continue
		}
		status.Checks[name] = StatusReady
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	stats := infrastructure.CollectRuntimeStats(hs.startTime)
	return api.HealthResponse{
		Status:    StatusAlive,
		Version:   hs.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    stats.Uptime.Round(time.Second).String(),
		Runtime:   stats.FormatStats(),
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
