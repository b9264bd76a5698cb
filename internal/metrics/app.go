// Package metrics names the application metrics and emits them through the
// gofulmen telemetry system. Every recorder is a no-op while telemetry is off.
package metrics

import (
	"strconv"
	"time"

	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

// Service lifecycle metrics
const (
	HealthCheckTotal    = "health_check_total"
	HealthCheckDuration = "health_check_duration_ms"
	ServerStartTime     = "server_start_time_seconds"
)

func counter(name string, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(name, 1, labels)
	}
}

func gauge(name string, value float64, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(name, value, labels)
	}
}

func histogram(name string, duration time.Duration, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(name, duration, labels)
	}
}

func outcome(success bool) string {
	return strconv.FormatBool(success)
}

// RecordHealthCheck records one checker run from a health probe.
func RecordHealthCheck(check, status string, duration time.Duration) {
	counter(HealthCheckTotal, map[string]string{"check": check, "status": status})
	histogram(HealthCheckDuration, duration, map[string]string{"check": check})
}

// SetServerStartTime records when serve finished starting up.
func SetServerStartTime(at time.Time) {
	gauge(ServerStartTime, float64(at.Unix()), nil)
}
