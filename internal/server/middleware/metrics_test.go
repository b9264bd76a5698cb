package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	return collector
}

func respondWith(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestRequestMetricsEmits(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		status  int
		body    string
		metrics []string
		absent  []string
	}{
		{
			name:    "Success",
			method:  http.MethodGet,
			status:  http.StatusOK,
			body:    `{"keys":["name"]}`,
			metrics: []string{"http_requests_total", "http_request_duration_ms", "http_request_size_bytes", "http_response_size_bytes"},
			absent:  []string{"http_errors_total"},
		},
		{
			name:    "ClientError",
			method:  http.MethodPost,
			status:  http.StatusBadRequest,
			metrics: []string{"http_requests_total", "http_errors_total"},
		},
		{
			name:    "ServerError",
			method:  http.MethodDelete,
			status:  http.StatusInternalServerError,
			metrics: []string{"http_errors_total"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := setupTelemetry(t)

			req := httptest.NewRequest(tt.method, "/templates/extract", strings.NewReader(`{"content":"{{name}}"}`))
			rec := httptest.NewRecorder()
			RequestMetrics(respondWith(tt.status, tt.body)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			for _, name := range tt.metrics {
				assert.Greater(t, collector.CountMetricsByName(name), 0, "expected %s", name)
			}
			for _, name := range tt.absent {
				assert.Zero(t, collector.CountMetricsByName(name), "unexpected %s", name)
			}
		})
	}
}

func TestRequestMetricsWithTelemetryDisabled(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	rec := httptest.NewRecorder()
	RequestMetrics(respondWith(http.StatusOK, "ok")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestBytes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/prompts", strings.NewReader("12345"))
	assert.Equal(t, int64(5), requestBytes(req))

	req = httptest.NewRequest(http.MethodPost, "/prompts", nil)
	req.Header.Set("Content-Length", "1024")
	assert.Equal(t, int64(1024), requestBytes(req))

	req.Header.Set("Content-Length", "nope")
	assert.Zero(t, requestBytes(req))
}

func TestGetEndpointPattern(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/health", "/health/*"},
		{"/health/ready", "/health/*"},
		{"/version", "/version"},
		{"/metrics", "/metrics"},
		{"/api/users/123", "/unknown"},
		{"/prompts", "/prompts/*"},
		{"/prompts/8f14e45f/render", "/prompts/*"},
		{"/templates/preview", "/templates/*"},
		{"/mcp/filesystem", "/mcp/*"},
		{"/mcpx", "/unknown"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expected, getEndpointPattern(req))
		})
	}
}

func TestGetEndpointPatternPrefersChiRoute(t *testing.T) {
	var pattern string
	router := chi.NewRouter()
	router.Post("/prompts/{id}/render", func(w http.ResponseWriter, r *http.Request) {
		pattern = getEndpointPattern(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/prompts/abc/render", nil))
	assert.Equal(t, "/prompts/{id}/render", pattern)
	assert.True(t, quietEndpoint("/health/*"))
	assert.False(t, quietEndpoint(pattern))
}

func TestRequestIDPropagation(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/prompts", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/prompts", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotContains(t, seen, "\n")
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	assert.False(t, validRequestID(strings.Repeat("a", maxRequestIDLength+1)))
}

func TestRecoveryHidesPanicDetails(t *testing.T) {
	collector := setupTelemetry(t)

	handler := RequestID(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render exploded")
	})))

	req := httptest.NewRequest(http.MethodPost, "/prompts/p1/render", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.Contains(t, rec.Body.String(), `"request_id":"req-1"`)
	assert.NotContains(t, rec.Body.String(), "render exploded")
	assert.Greater(t, collector.CountMetricsByName("panics_total"), 0)
}
