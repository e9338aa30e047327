package system

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hse/internal/config"
	"go-hse/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{AppId: "go-hse", KVDriver: "memory", Environment: "production"}
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	m.RecordWebhookEvent("invoice.paid", "handled")

	app := fiber.New()
	NewHealthApi(NewHealthController(nil, nil, nil, cfg), m, cfg).Setup(app)
	return app
}

func TestHealthWithoutBackends(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["kv_driver"])
}

func TestMetricsEndpoint(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "invoice.paid"))
}

func TestDebugRoutesHiddenInProduction(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest("GET", "/api/debug/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
