package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/infra/opensearch"
	"github.com/payrelay/payrelay/infra/response"
	"github.com/payrelay/payrelay/infra/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	regions    *config.Regions
	attempts   *storage.AttemptStore
	openSearch *opensearch.Client
	startTime  time.Time
}

// HealthStatus represents overall system health. Region entries expose
// configuration state and currency only; credentials are never included.
type HealthStatus struct {
	Status    string                         `json:"status"`
	Version   string                         `json:"version"`
	Timestamp time.Time                      `json:"timestamp"`
	Uptime    string                         `json:"uptime"`
	Regions   map[string]config.RegionStatus `json:"regions"`
	Services  map[string]*ServiceHealth      `json:"services"`
	System    *SystemHealth                  `json:"system"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string `json:"status"`
	Healthy     bool   `json:"healthy"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SystemHealth represents runtime resource usage
type SystemHealth struct {
	GoRoutines int    `json:"goroutines"`
	AllocBytes uint64 `json:"alloc_bytes"`
	GCRuns     uint32 `json:"gc_runs"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(regions *config.Regions, attempts *storage.AttemptStore, openSearch *opensearch.Client) *HealthHandler {
	return &HealthHandler{
		regions:    regions,
		attempts:   attempts,
		openSearch: openSearch,
		startTime:  time.Now(),
	}
}

// CheckHealth reports per-region configuration state and service health.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	health := &HealthStatus{
		Version:   "1.0.0",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
		Regions:   h.regions.Status(),
		Services:  h.checkServicesHealth(ctx),
		System: &SystemHealth{
			GoRoutines: runtime.NumGoroutine(),
			AllocBytes: memStats.Alloc,
			GCRuns:     memStats.NumGC,
		},
	}

	health.Status = h.determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, health)
}

func (h *HealthHandler) checkServicesHealth(ctx context.Context) map[string]*ServiceHealth {
	services := make(map[string]*ServiceHealth)

	attemptLog := &ServiceHealth{Description: "Payment attempt audit log"}
	switch {
	case h.attempts == nil:
		attemptLog.Status = "not_configured"
	case h.attempts.Ping(ctx) != nil:
		attemptLog.Status = "unhealthy"
		attemptLog.Error = "attempt store unreachable"
	default:
		attemptLog.Status = "healthy"
		attemptLog.Healthy = true
	}
	services["attempt_log"] = attemptLog

	osHealth := &ServiceHealth{Description: "Request logging to OpenSearch"}
	if h.openSearch != nil && h.openSearch.IsEnabled() {
		osHealth.Status = "healthy"
		osHealth.Healthy = true
	} else {
		osHealth.Status = "not_configured"
	}
	services["opensearch_logger"] = osHealth

	return services
}

// determineOverallStatus derives the overall status. The relay is healthy
// when at least one region can accept payments; optional services only
// degrade the status.
func (h *HealthHandler) determineOverallStatus(health *HealthStatus) string {
	configured := 0
	for _, region := range health.Regions {
		if region.Configured {
			configured++
		}
	}
	if configured == 0 {
		return "unhealthy"
	}

	for _, service := range health.Services {
		if service.Status == "unhealthy" {
			return "degraded"
		}
	}

	return "healthy"
}
