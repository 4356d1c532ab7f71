package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/social-api/internal/config"
	"github.com/hongminglow/social-api/internal/http/respond"
	"github.com/hongminglow/social-api/internal/storage"
	"github.com/hongminglow/social-api/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		StoreDriver:    config.DriverMemory,
		CORSOrigins:    []string{"https://app.example.com"},
		RequestTimeout: 5 * time.Second,
		RateLimitBurst: 20,
	}
}

func newTestServer(t *testing.T, cfg config.Config, store storage.Store) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewHandler(cfg, store, prometheus.NewRegistry()))
	t.Cleanup(ts.Close)
	return ts
}

type downStore struct {
	*memory.Store
}

func (downStore) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testConfig(), memory.NewStore())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["store"])
	assert.NotEmpty(t, body["uptime"])
}

func TestHealthDegraded(t *testing.T) {
	ts := newTestServer(t, testConfig(), downStore{Store: memory.NewStore()})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["store"])
}

func TestMetricsExposeRouteTemplates(t *testing.T) {
	ts := newTestServer(t, testConfig(), memory.NewStore())

	resp, err := http.Get(ts.URL + "/users/some-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `socialapi_http_requests_total{code="404",method="GET",route="/users/{id}"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	ts := newTestServer(t, testConfig(), memory.NewStore())

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body respond.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "route not found", body.Message)

	req, err := http.NewRequest(http.MethodPatch, ts.URL+"/users", nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, testConfig(), memory.NewStore())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/users", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimitApplies(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	ts := newTestServer(t, cfg, memory.NewStore())

	first, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader(`{"username":"ada"}`))
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(ts.URL + "/users")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
