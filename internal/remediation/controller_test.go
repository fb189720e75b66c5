package remediation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelops/sentinel/internal/actuator"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/pkg/models"
)

type controllerFixture struct {
	controller *Controller
	registry   *registry.Registry
	actuator   *actuator.SimActuator
	log        *ActionLog
	clock      *fakeClock
}

func newControllerFixture(t *testing.T, enabled bool) *controllerFixture {
	t.Helper()

	policyFile := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(policyFile, []byte(`
policies:
  - name: orders_latency_restart
    service: orders
    condition: latency > 200
    action: restart_container
    cooldown: 300
    enabled: true
  - name: orders_latency_alert
    service: orders
    condition: latency > 400
    action: alert
    cooldown: 300
    enabled: true
`), 0o644))

	policies := policy.NewStore(policyFile)

	sim := actuator.NewSimActuator()
	cooldowns, clock := newTrackerWithClock()
	log := NewActionLog(10)
	bus := events.NewEventBus(10)
	t.Cleanup(bus.Close)

	executor := NewExecutor(sim, cooldowns, log, events.NewPublisher(bus), metrics.New())
	reg := registry.New()
	controller := NewController(Config{Interval: time.Second, Enabled: enabled},
		NewRegistryFeed(reg), policies, executor, cooldowns)

	return &controllerFixture{
		controller: controller,
		registry:   reg,
		actuator:   sim,
		log:        log,
		clock:      clock,
	}
}

func anomaly(service, metric string, value float64) models.AnomalyPrediction {
	return models.AnomalyPrediction{
		Service:      service,
		Metric:       metric,
		CurrentValue: value,
		IsAnomaly:    true,
		Confidence:   0.9,
		Severity:     models.SeverityCritical,
		Timestamp:    time.Now(),
	}
}

func TestController_ExecutesMatchingPolicies(t *testing.T) {
	f := newControllerFixture(t, true)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("orders", "latency", 500)})

	executed, err := f.controller.RunCycle(context.Background())

	require.NoError(t, err)
	// Both policies match the 500ms latency reading
	assert.Len(t, executed, 2)
	assert.Equal(t, 1, f.actuator.RestartCount("orders"))
	assert.Len(t, f.actuator.Alerts(), 1)
}

func TestController_CooldownPreventsRepeatExecution(t *testing.T) {
	f := newControllerFixture(t, true)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("orders", "latency", 300)})

	first, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	// Same anomaly persists into the next cycle, still inside the cooldown
	second, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, f.actuator.RestartCount("orders"))

	f.clock.Advance(301 * time.Second)

	third, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, third, 1)
	assert.Equal(t, 2, f.actuator.RestartCount("orders"))
}

func TestController_DisabledDoesNothing(t *testing.T) {
	f := newControllerFixture(t, false)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("orders", "latency", 500)})

	executed, err := f.controller.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Empty(t, executed)
	assert.Equal(t, 0, f.actuator.RestartCount("orders"))
}

func TestController_Toggle(t *testing.T) {
	f := newControllerFixture(t, false)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("orders", "latency", 500)})

	assert.False(t, f.controller.Enabled())
	assert.True(t, f.controller.Toggle(true))

	executed, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, executed)

	assert.False(t, f.controller.Toggle(false))
	assert.False(t, f.controller.Enabled())
}

func TestController_IgnoresNonAnomalousPredictions(t *testing.T) {
	f := newControllerFixture(t, true)

	normal := anomaly("orders", "latency", 500)
	normal.IsAnomaly = false
	f.registry.SetCurrent([]models.AnomalyPrediction{normal})

	executed, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, executed)
}

func TestController_NoMatchingServiceNoAction(t *testing.T) {
	f := newControllerFixture(t, true)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("payments", "latency", 500)})

	executed, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, executed)
}

func TestController_StatusReflectsState(t *testing.T) {
	f := newControllerFixture(t, true)
	f.registry.SetCurrent([]models.AnomalyPrediction{anomaly("orders", "latency", 500)})

	_, err := f.controller.RunCycle(context.Background())
	require.NoError(t, err)

	status := f.controller.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, int64(1), status.Cycles)
	assert.Equal(t, 2, status.PolicyCount)
	assert.Equal(t, 2, status.ActionCount)
	assert.NotNil(t, status.LastCycle)
}
