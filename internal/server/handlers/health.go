package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/mkashifaslam/prompt-studio/internal/metrics"
)

// Check results reported per component.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusTimeout   = "timeout"
	StatusStarting  = "starting"
)

// HealthResponse represents the aggregate health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse is returned by the live, ready and startup probes.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Probe     string    `json:"probe"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker is implemented by the store and the telemetry exporter.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type registration struct {
	checker HealthChecker
	// optional checkers degrade the aggregate status instead of failing it.
	optional bool
}

type probe struct {
	name    string
	timeout time.Duration
	failure string
}

var (
	aggregateProbe = probe{name: "aggregate", timeout: 5 * time.Second, failure: "aggregate health check failed"}
	readyProbe     = probe{name: "ready", timeout: 5 * time.Second, failure: "readiness probe failed"}
	startupProbe   = probe{name: "startup", timeout: 3 * time.Second, failure: "startup probe failed"}
)

// HealthManager runs registered checkers for the health routes. The startup
// probe stays unavailable until MarkStarted is called, which serve does once
// the store is migrated and builtin prompts are seeded.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]registration
	version  string
	started  atomic.Bool
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]registration),
		version:  version,
	}
}

// RegisterChecker registers a checker whose failure makes the service unhealthy.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.register(name, registration{checker: checker})
}

// RegisterOptionalChecker registers a checker whose failure only degrades health.
func (hm *HealthManager) RegisterOptionalChecker(name string, checker HealthChecker) {
	hm.register(name, registration{checker: checker, optional: true})
}

func (hm *HealthManager) register(name string, reg registration) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = reg
}

// MarkStarted opens the startup probe.
func (hm *HealthManager) MarkStarted() {
	hm.started.Store(true)
}

// Started reports whether MarkStarted has been called.
func (hm *HealthManager) Started() bool {
	return hm.started.Load()
}

func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checkers))
	regs := make(map[string]registration, len(hm.checkers))
	for name, reg := range hm.checkers {
		names = append(names, name)
		regs[name] = reg
	}
	hm.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = StatusTimeout
			continue
		}
		reg := regs[name]
		start := time.Now()
		switch err := reg.checker.CheckHealth(ctx); {
		case err == nil:
			checks[name] = StatusHealthy
		case reg.optional:
			checks[name] = StatusDegraded
		default:
			checks[name] = StatusUnhealthy
		}
		metrics.RecordHealthCheck(name, checks[name], time.Since(start))
	}
	return checks
}

func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	overall := StatusHealthy
	for _, status := range checks {
		switch status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded, StatusTimeout:
			overall = StatusDegraded
		}
	}
	return overall
}

func (hm *HealthManager) evaluate(r *http.Request, p probe) (string, map[string]string) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	checks := hm.runHealthChecks(ctx)
	return hm.determineOverallStatus(checks), checks
}

// HealthHandler handles GET /health with per-component results.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status, checks := hm.evaluate(r, aggregateProbe)
	if status == StatusUnhealthy {
		respondUnavailable(w, r, aggregateProbe, status, checks)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler reports that the process is serving requests. It does not
// consult checkers, so a down database never restarts the process.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, "live", StatusHealthy)
}

// ReadinessHandler fails while any required checker fails.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	status, checks := hm.evaluate(r, readyProbe)
	if status == StatusUnhealthy {
		respondUnavailable(w, r, readyProbe, status, checks)
		return
	}
	writeProbe(w, readyProbe.name, status)
}

// StartupHandler fails until MarkStarted and then behaves like readiness.
func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	if !hm.Started() {
		respondUnavailable(w, r, startupProbe, StatusStarting, nil)
		return
	}
	status, checks := hm.evaluate(r, startupProbe)
	if status == StatusUnhealthy {
		respondUnavailable(w, r, startupProbe, status, checks)
		return
	}
	writeProbe(w, startupProbe.name, status)
}

func writeProbe(w http.ResponseWriter, name, status string) {
	writeJSON(w, http.StatusOK, ProbeResponse{
		Status:    status,
		Probe:     name,
		Timestamp: time.Now().UTC(),
	})
}

func respondUnavailable(w http.ResponseWriter, r *http.Request, p probe, status string, checks map[string]string) {
	envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", p.failure)
	respondWithError(w, r, enrichHealthEnvelope(envelope, p.name, status, checks))
}

func enrichHealthEnvelope(envelope *errors.ErrorEnvelope, probe, status string, checks map[string]string) *errors.ErrorEnvelope {
	details := map[string]interface{}{
		"status": status,
		"probe":  probe,
	}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	envelope = envelope.WithDetails(details)

	contextData := map[string]interface{}{
		"status": status,
		"probe":  probe,
	}
	var failing []string
	for name, result := range checks {
		if result != StatusHealthy {
			failing = append(failing, name)
		}
	}
	if len(failing) > 0 {
		sort.Strings(failing)
		contextData["unhealthy_checks"] = failing
	}

	envelope, _ = envelope.WithContext(contextData)
	return envelope
}

var globalHealthManager *HealthManager

// InitHealthManager installs the manager used by the package-level handlers.
func InitHealthManager(version string) {
	globalHealthManager = NewHealthManager(version)
}

// GetHealthManager returns the manager installed by InitHealthManager.
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

func withManager(probeName string, handle func(*HealthManager, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if globalHealthManager == nil {
			envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "health manager not initialized")
			respondWithError(w, r, enrichHealthEnvelope(envelope, probeName, "unknown", nil))
			return
		}
		handle(globalHealthManager, w, r)
	}
}

// Package-level probe handlers backed by the global manager.
var (
	HealthHandler    = withManager(aggregateProbe.name, (*HealthManager).HealthHandler)
	LivenessHandler  = withManager("live", (*HealthManager).LivenessHandler)
	ReadinessHandler = withManager(readyProbe.name, (*HealthManager).ReadinessHandler)
	StartupHandler   = withManager(startupProbe.name, (*HealthManager).StartupHandler)
)
