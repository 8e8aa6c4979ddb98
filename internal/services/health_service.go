package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataDir   string
	data      *DataService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime, dataDir string, data *DataService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataDir:   dataDir,
		data:      data,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check reports process health plus data-directory reachability and
// cache counters. An unreachable data directory degrades the status but
// the process stays up.
func (hs *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}

	dataInfo := map[string]interface{}{"data_dir": hs.dataDir}
	if _, err := os.Stat(hs.dataDir); err != nil {
		status.Status = "degraded"
		dataInfo["error"] = err.Error()
	}
	if hs.data != nil {
		hits, misses := hs.data.CacheStats()
		dataInfo["cache_hits"] = hits
		dataInfo["cache_misses"] = misses
	}
	status.Data = dataInfo

	return status
}
