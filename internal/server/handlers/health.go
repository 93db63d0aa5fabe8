package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	fulerrors "github.com/fulmenhq/gofulmen/errors"

	"github.com/lightspeedtech/lightspeed/internal/metrics"
)

// Check results.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusTimeout   = "timeout"
)

// ErrDegraded marks a check failure that leaves the server able to answer
// traffic, e.g. a missing provider key that only breaks one endpoint.
var ErrDegraded = errors.New("degraded")

// HealthResponse is the aggregate /health body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse is the body of the live, ready and startup probes.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker is a component whose health is reported by the probes.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthManager runs registered checks for the health endpoints.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	version  string
	started  bool
}

func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		version:  version,
	}
}

func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

// MarkStarted flips the startup probe to healthy.
func (hm *HealthManager) MarkStarted() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.started = true
}

func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(hm.checkers))
	for name, c := range hm.checkers {
		checkers[name] = c
	}
	hm.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = StatusTimeout
			continue
		}

		started := time.Now()
		err := checkers[name].CheckHealth(ctx)
		switch {
		case err == nil:
			checks[name] = StatusHealthy
		case errors.Is(err, ErrDegraded):
			checks[name] = StatusDegraded
		case errors.Is(err, context.DeadlineExceeded):
			checks[name] = StatusTimeout
		default:
			checks[name] = StatusUnhealthy
		}
		metrics.RecordHealthCheck(name, err == nil, time.Since(started))
	}
	return checks
}

func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	degraded := false
	for _, status := range checks {
		if status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if status == StatusDegraded || status == StatusTimeout {
			degraded = true
		}
	}
	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// HealthHandler reports every check by name.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := hm.runHealthChecks(checkCtx)
	status := hm.determineOverallStatus(checks)
	if status == StatusUnhealthy {
		envelope := fulerrors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "aggregate health check failed")
		respondWithError(w, r, enrichHealthEnvelope(envelope, "", status, checks))
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler answers as long as the process serves HTTP.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: StatusHealthy, Timestamp: time.Now().UTC()})
}

// ReadinessHandler fails only when a check is unhealthy; degraded checks
// still take traffic.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "ready", 5*time.Second)
}

// StartupHandler fails until MarkStarted is called.
func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.mu.RLock()
	started := hm.started
	hm.mu.RUnlock()

	if !started {
		envelope := fulerrors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "startup probe failed")
		respondWithError(w, r, enrichHealthEnvelope(envelope, "startup", "starting", nil))
		return
	}
	hm.probe(w, r, "startup", 3*time.Second)
}

func (hm *HealthManager) probe(w http.ResponseWriter, r *http.Request, name string, timeout time.Duration) {
	checkCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks := hm.runHealthChecks(checkCtx)
	status := hm.determineOverallStatus(checks)
	if status == StatusUnhealthy {
		envelope := fulerrors.NewErrorEnvelope("SERVICE_UNAVAILABLE", name+" probe failed")
		respondWithError(w, r, enrichHealthEnvelope(envelope, name, status, checks))
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{Status: status, Timestamp: time.Now().UTC()})
}

func enrichHealthEnvelope(envelope *fulerrors.ErrorEnvelope, probe, status string, checks map[string]string) *fulerrors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	details := map[string]interface{}{"status": status}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	if probe != "" {
		details["probe"] = probe
	}
	envelope = envelope.WithDetails(details)

	var unhealthy []string
	for name, result := range checks {
		if result != StatusHealthy {
			unhealthy = append(unhealthy, name)
		}
	}
	if len(unhealthy) > 0 {
		sort.Strings(unhealthy)
		if updated, err := envelope.WithContext(map[string]interface{}{"unhealthy_checks": unhealthy}); err == nil {
			envelope = updated
		}
	}
	return envelope
}
