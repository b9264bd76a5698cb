package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// routeGroups label requests that chi did not match, so ids in unmatched
// paths never become label values.
var routeGroups = []string{"/prompts", "/templates", "/mcp", "/health"}

// getEndpointPattern returns the chi route pattern or a coarse group label.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch path {
	case "/", "/version", "/metrics":
		return path
	}
	for _, prefix := range routeGroups {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return prefix + "/*"
		}
	}
	return "/unknown"
}

// quietEndpoint reports probe and scrape traffic, logged at debug level.
func quietEndpoint(endpoint string) bool {
	return endpoint == "/metrics" || strings.HasPrefix(endpoint, "/health")
}

// RequestMetrics emits request count, latency, sizes and error counters for
// every request and logs one line per request.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		endpoint := getEndpointPattern(r)
		requestSize := requestBytes(r)
		emitRequestMetrics(r.Method, endpoint, rec, duration, requestSize)

		if observability.ServerLogger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("endpoint", endpoint),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			zap.Int64("request_size", requestSize),
			zap.Int64("response_size", rec.bytes),
			zap.String("requestID", GetRequestID(r.Context())),
		}
		if quietEndpoint(endpoint) {
			observability.ServerLogger.Debug("HTTP request completed", fields...)
			return
		}
		observability.ServerLogger.Info("HTTP request completed", fields...)
	})
}

func requestBytes(r *http.Request) int64 {
	if r.ContentLength > 0 {
		return r.ContentLength
	}
	if size, err := strconv.ParseInt(r.Header.Get("Content-Length"), 10, 64); err == nil && size > 0 {
		return size
	}
	return 0
}

func emitRequestMetrics(method, endpoint string, rec *statusRecorder, duration time.Duration, requestSize int64) {
	telemetry := observability.TelemetrySystem
	status := strconv.Itoa(rec.status)
	labels := map[string]string{"method": method, "endpoint": endpoint, "status": status}
	sizeLabels := map[string]string{"method": method, "endpoint": endpoint}

	_ = telemetry.Counter("http_requests_total", 1, labels)
	_ = telemetry.Histogram("http_request_duration_ms", duration, labels)
	_ = telemetry.Gauge("http_request_size_bytes", float64(requestSize), sizeLabels)
	_ = telemetry.Gauge("http_response_size_bytes", float64(rec.bytes), sizeLabels)

	if rec.status < 400 {
		return
	}
	errorType := "client_error"
	if rec.status >= 500 {
		errorType = "server_error"
	}
	_ = telemetry.Counter("http_errors_total", 1, map[string]string{
		"method":     method,
		"endpoint":   endpoint,
		"status":     status,
		"error_type": errorType,
	})
}
