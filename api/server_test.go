package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelops/sentinel/internal/actuator"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/monitor"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/internal/remediation"
	"github.com/sentinelops/sentinel/internal/telemetry"
	"github.com/sentinelops/sentinel/pkg/config"
	"github.com/sentinelops/sentinel/pkg/models"
)

type serverFixture struct {
	server   *Server
	registry *registry.Registry
	executor *remediation.Executor
	policies *policy.Store
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)
	publisher := events.NewPublisher(bus)

	querier := telemetry.NewMockQuerier()
	reg := registry.New()
	hist := history.NewStore(100)
	m := metrics.New()

	mon := monitor.New(monitor.Config{
		Targets: []monitor.Target{{Service: "orders", Metric: "latency", Query: "expr"}},
	}, querier, hist, reg, publisher, m)

	policies := policy.NewStore(filepath.Join(t.TempDir(), "policies.yaml"))
	cooldowns := remediation.NewCooldownTracker()
	log := remediation.NewActionLog(remediation.DefaultLogCapacity)
	executor := remediation.NewExecutor(actuator.NewSimActuator(), cooldowns, log, publisher, m)
	controller := remediation.NewController(remediation.Config{Interval: time.Second, Enabled: true},
		remediation.NewRegistryFeed(reg), policies, executor, cooldowns)

	server, err := NewServer(
		config.APIConfig{
			Host:          "127.0.0.1",
			Port:          0,
			JWTSecret:     "server-test-secret",
			TokenExpiry:   time.Hour,
			AdminUser:     "admin",
			AdminPassword: "admin",
		},
		config.WebSocketConfig{SeenLimit: 100},
		Dependencies{
			Querier:    querier,
			Registry:   reg,
			History:    hist,
			Monitor:    mon,
			Policies:   policies,
			Controller: controller,
			ActionLog:  log,
			Executor:   executor,
			Publisher:  publisher,
			Bus:        bus,
			Metrics:    m,
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() { server.Shutdown(context.Background()) })

	return &serverFixture{
		server:   server,
		registry: reg,
		executor: executor,
		policies: policies,
	}
}

func (f *serverFixture) do(method, path, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	return w
}

func (f *serverFixture) login(t *testing.T) (token string, expiresIn int) {
	t.Helper()

	w := f.do(http.MethodPost, "/auth/login", "", `{"username":"admin","password":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.ExpiresIn
}

func TestServer_ReadOnlyPathsRespond(t *testing.T) {
	f := newServerFixture(t)

	for _, path := range []string{
		"/health", "/status", "/remediation/status",
		"/anomalies", "/anomalies/history",
		"/predictions", "/predictions/all",
		"/services/health",
		"/actions", "/actions/recent", "/actions/history",
		"/policies",
	} {
		w := f.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, "GET %s", path)
	}
}

func TestServer_MutatingPathsRequireToken(t *testing.T) {
	f := newServerFixture(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/detect/run"},
		{http.MethodPost, "/detect/manual"},
		{http.MethodPost, "/evaluate"},
		{http.MethodPost, "/remediation/evaluate"},
		{http.MethodPost, "/toggle"},
		{http.MethodPost, "/remediation/toggle"},
	} {
		w := f.do(route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestServer_ToggleWithToken(t *testing.T) {
	f := newServerFixture(t)
	token, _ := f.login(t)

	w := f.do(http.MethodPost, "/toggle", token, `{"enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Enabled bool `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Enabled)
}

func TestServer_LoginReportsConfiguredExpiry(t *testing.T) {
	f := newServerFixture(t)

	_, expiresIn := f.login(t)
	assert.Equal(t, int(time.Hour.Seconds()), expiresIn)
}

func TestServer_ActionHistoryServedFromLog(t *testing.T) {
	f := newServerFixture(t)

	p, err := f.policies.Get("high_latency_restart")
	require.NoError(t, err)
	f.executor.Execute(context.Background(), p, "history check")

	w := f.do(http.MethodGet, "/actions/history?service="+p.Service, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Actions []models.RemediationAction `json:"actions"`
		Count   int                        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, p.Name, resp.Actions[0].PolicyName)
	assert.Equal(t, "history check", resp.Actions[0].Reason)
}
