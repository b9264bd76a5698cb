package integration

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashifaslam/prompt-studio/internal/config"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
	"github.com/mkashifaslam/prompt-studio/internal/server"
	"github.com/mkashifaslam/prompt-studio/internal/server/handlers"
)

// sandboxDenied reports socket errors from sandboxes that forbid loopback binds.
func sandboxDenied(err error) bool {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "not permitted")
}

func requireBind(t *testing.T, err error) {
	t.Helper()
	if err != nil && sandboxDenied(err) {
		t.Skipf("loopback sockets unavailable: %v", err)
	}
	require.NoError(t, err)
}

// templateAPI starts the router with only the stateless template routes and
// the health probes, on an IPv4 loopback listener.
func templateAPI(t *testing.T, withMetrics bool) *httptest.Server {
	t.Helper()

	observability.InitServerLogger(observability.ServerLoggerOptions{Service: "test", Level: "warn", Environment: "test"})
	if withMetrics {
		requireBind(t, observability.InitMetrics("test", 0, "test"))
		t.Cleanup(func() { _ = observability.ShutdownMetrics() })
	}

	handlers.InitHealthManager("test")
	health := handlers.GetHealthManager()
	health.RegisterOptionalChecker("telemetry", observability.TelemetryChecker{})
	health.MarkStarted()
	srv := server.New(server.Options{
		Server:        config.ServerConfig{Host: "127.0.0.1", MaxBodyBytes: 1 << 20},
		HealthEnabled: true,
	})

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	requireBind(t, err)

	ts := &httptest.Server{Listener: listener, Config: &http.Server{Handler: srv.Handler()}}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

type call struct {
	method string
	path   string
	body   string
	status int
}

var templateCalls = []call{
	{http.MethodPost, "/templates/extract", `{"content":"Hi {{name}}, see {{ topic }}"}`, http.StatusOK},
	{http.MethodPost, "/templates/sync", `{"content":"{{a}} {{b}}","variables":[{"key":"stale"}]}`, http.StatusOK},
	{http.MethodPost, "/templates/preview", `{"content":"Hi {{name}}","variables":[{"key":"name"}],"values":{"name":"Ada"}}`, http.StatusOK},
	{http.MethodPost, "/templates/preview", `{not json`, http.StatusBadRequest},
	{http.MethodGet, "/health/startup", "", http.StatusOK},
	{http.MethodGet, "/prompts", "", http.StatusNotFound},
}

// do only asserts, so it is safe to call from worker goroutines.
func (c call) do(t *testing.T, client *http.Client, base string) {
	t.Helper()
	req, err := http.NewRequest(c.method, base+c.path, strings.NewReader(c.body))
	if !assert.NoError(t, err) {
		return
	}
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if !assert.NoError(t, err) {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, c.status, resp.StatusCode, "%s %s", c.method, c.path)
}

func scrape(t *testing.T, client *http.Client, base string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestMetricsCoverTemplateTraffic(t *testing.T) {
	ts := templateAPI(t, true)
	client := ts.Client()

	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 5; round++ {
				for _, c := range templateCalls {
					c.do(t, client, ts.URL)
				}
			}
		}()
	}
	wg.Wait()

	resp, body := scrape(t, client, ts.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain; version=0.0.4"),
		"unexpected content type %q", resp.Header.Get("Content-Type"))

	for _, name := range []string{
		"test_http_requests_total",
		"test_http_request_duration_ms",
		"test_http_errors_total",
		"test_template_operations_total",
		"test_health_check_total",
	} {
		assert.Contains(t, body, name)
	}

	samples := 0
	for _, line := range strings.Split(body, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		assert.GreaterOrEqual(t, len(strings.Fields(line)), 2, "malformed sample %q", line)
		samples++
	}
	assert.Greater(t, samples, 0)
}

func TestMetricsUnavailableWithoutTelemetry(t *testing.T) {
	originalExporter, originalSystem := observability.PrometheusExporter, observability.TelemetrySystem
	observability.PrometheusExporter, observability.TelemetrySystem = nil, nil
	t.Cleanup(func() {
		observability.PrometheusExporter, observability.TelemetrySystem = originalExporter, originalSystem
	})

	ts := templateAPI(t, false)
	client := ts.Client()

	templateCalls[0].do(t, client, ts.URL)

	resp, body := scrape(t, client, ts.URL)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "SERVICE_UNAVAILABLE")
}
