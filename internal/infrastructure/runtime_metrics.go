package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the Go runtime.
type RuntimeStats struct {
	Goroutines     int           `json:"goroutines"`
	HeapAllocBytes uint64        `json:"heap_alloc_bytes"`
	SysBytes       uint64        `json:"sys_bytes"`
	NumGC          uint32        `json:"num_gc"`
	Uptime         time.Duration `json:"uptime"`
}

// CollectRuntimeStats reads the current runtime statistics.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: m.HeapAlloc,
		SysBytes:       m.Sys,
		NumGC:          m.NumGC,
		Uptime:         time.Since(startTime),
	}
}

// FormatStats renders the stats for JSON health responses.
func (s RuntimeStats) FormatStats() map[string]any {
	return map[string]any{
		"goroutines":       s.Goroutines,
		"heap_alloc_bytes": s.HeapAllocBytes,
		"sys_bytes":        s.SysBytes,
		"num_gc":           s.NumGC,
		"uptime_seconds":   int64(s.Uptime.Seconds()),
	}
}

// RegisterRuntimeMetrics exposes goroutine count, heap size and uptime as observable
// gauges. Values are read when the meter is collected.
func RegisterRuntimeMetrics(meter metric.Meter, startTime time.Time) error {
	goroutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return err
	}

	heapAlloc, err := meter.Int64ObservableGauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Memory allocated by Go runtime in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := CollectRuntimeStats(startTime)
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heapAlloc, int64(stats.HeapAllocBytes))
		o.ObserveFloat64(uptime, stats.Uptime.Seconds())
		return nil
	}, goroutines, heapAlloc, uptime)
	return err
}
