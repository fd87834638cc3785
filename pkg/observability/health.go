package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/flare/pkg/httputil"
)

// HealthChecker reports the health of a long-running generator
type HealthChecker struct {
	redis   *redis.Client
	version string

	mu      sync.RWMutex
	lastRun *RunStatus
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	LastRun      *RunStatus                  `json:"last_run,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// RunStatus describes the most recent generation run
type RunStatus struct {
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// NewHealthChecker creates a new health checker. redis may be nil.
func NewHealthChecker(redis *redis.Client, version string) *HealthChecker {
	return &HealthChecker{
		redis:   redis,
		version: version,
	}
}

// RecordGeneration stores the outcome of the latest generation run
func (h *HealthChecker) RecordGeneration(err error) {
	status := &RunStatus{
		Succeeded: err == nil,
		Timestamp: time.Now(),
	}
	if err != nil {
		status.Error = err.Error()
	}

	h.mu.Lock()
	h.lastRun = status
	h.mu.Unlock()
}

// Liveness answers 200 while the process is serving
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	_ = httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness answers 503 when the last generation failed, 200 otherwise.
// A lost Redis only degrades readiness.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	_ = httputil.WriteJSON(w, code, status)
}

// Check reports the last run and, when configured, the Redis connection
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	h.mu.RLock()
	if h.lastRun != nil {
		run := *h.lastRun
		status.LastRun = &run
		if !run.Succeeded {
			status.Status = StatusUnhealthy
		}
	}
	h.mu.RUnlock()

	if h.redis != nil {
		redisStatus := h.checkRedis(ctx)
		status.Dependencies["redis"] = redisStatus
		if redisStatus.Status == StatusUnhealthy && status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

func (h *HealthChecker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	err := h.redis.Ping(ctx).Err()
	status.Latency = time.Since(start)
	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}

	return status
}
