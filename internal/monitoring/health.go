// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// HealthCheck is the result for one dependency
type HealthCheck struct {
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Critical bool          `json:"critical"`
}

// SystemHealth represents overall service health
type SystemHealth struct {
	Status         HealthStatus  `json:"status"`
	Timestamp      time.Time     `json:"timestamp"`
	Version        string        `json:"version,omitempty"`
	Uptime         string        `json:"uptime"`
	GoroutineCount int           `json:"goroutine_count"`
	Checks         []HealthCheck `json:"checks,omitempty"`
}

type registeredCheck struct {
	check    CheckFunc
	critical bool
}

// HealthManager runs dependency checks on demand
type HealthManager struct {
	mu      sync.RWMutex
	checks  map[string]registeredCheck
	timeout time.Duration
	version string
	started time.Time
}

// NewHealthManager creates a new health manager. timeout bounds each check.
func NewHealthManager(version string, timeout time.Duration) *HealthManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthManager{
		checks:  make(map[string]registeredCheck),
		timeout: timeout,
		version: version,
		started: time.Now(),
	}
}

// RegisterCheck adds a check. A failing critical check makes the service
// unhealthy; any other failure only degrades it.
func (hm *HealthManager) RegisterCheck(name string, critical bool, check CheckFunc) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checks[name] = registeredCheck{check: check, critical: critical}
}

// GetHealth runs every registered check concurrently
func (hm *HealthManager) GetHealth(ctx context.Context) SystemHealth {
	type namedCheck struct {
		name string
		registeredCheck
	}
	hm.mu.RLock()
	pending := make([]namedCheck, 0, len(hm.checks))
	for name, c := range hm.checks {
		pending = append(pending, namedCheck{name, c})
	}
	hm.mu.RUnlock()
	sort.Slice(pending, func(i, j int) bool { return pending[i].name < pending[j].name })

	results := make([]HealthCheck, len(pending))
	var wg sync.WaitGroup
	for i, c := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
			defer cancel()

			start := time.Now()
			err := c.check(checkCtx)
			result := HealthCheck{Name: c.name, Status: HealthStatusHealthy, Duration: time.Since(start), Critical: c.critical}
			if err != nil {
				result.Status = HealthStatusUnhealthy
				result.Error = err.Error()
			}
			results[i] = result
		}()
	}
	wg.Wait()

	status := HealthStatusHealthy
	for _, r := range results {
		if r.Status == HealthStatusHealthy {
			continue
		}
		if r.Critical {
			status = HealthStatusUnhealthy
			break
		}
		status = HealthStatusDegraded
	}

	return SystemHealth{
		Status:         status,
		Timestamp:      time.Now().UTC(),
		Version:        hm.version,
		Uptime:         time.Since(hm.started).Round(time.Second).String(),
		GoroutineCount: runtime.NumGoroutine(),
		Checks:         results,
	}
}

// HealthHandler serves GetHealth as JSON; unhealthy answers 503
func (hm *HealthManager) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.GetHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(health)
	}
}
