package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelops/sentinel/internal/detector"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/internal/telemetry"
	"github.com/sentinelops/sentinel/pkg/models"
)

type monitorFixture struct {
	monitor  *Monitor
	querier  *telemetry.MockQuerier
	registry *registry.Registry
	bus      *events.EventBus
}

func newMonitorFixture(t *testing.T, cfg Config) *monitorFixture {
	t.Helper()

	querier := telemetry.NewMockQuerier()
	reg := registry.New()
	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	mon := New(cfg, querier, history.NewStore(100), reg, events.NewPublisher(bus), metrics.New())

	return &monitorFixture{
		monitor:  mon,
		querier:  querier,
		registry: reg,
		bus:      bus,
	}
}

func latencyTarget() Target {
	return Target{Service: "orders", Metric: "latency", Query: "orders_latency_expr"}
}

func TestMonitor_FlagsSpikeAfterWarmup(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{latencyTarget()}})

	f.querier.SetValue("orders_latency_expr", 100)
	for i := 0; i < 25; i++ {
		anomalies := f.monitor.RunCycle(context.Background())
		assert.Empty(t, anomalies)
	}

	f.querier.SetValue("orders_latency_expr", 1000)
	anomalies := f.monitor.RunCycle(context.Background())

	require.Len(t, anomalies, 1)
	pred := anomalies[0]
	assert.True(t, pred.IsAnomaly)
	assert.Equal(t, "orders", pred.Service)
	assert.Equal(t, "latency", pred.Metric)
	assert.Equal(t, 1000.0, pred.CurrentValue)
	assert.Equal(t, models.SeverityCritical, pred.Severity)
	assert.Equal(t, detector.MethodStatistical, pred.DetectionMethod)

	current := f.registry.Current()
	require.Len(t, current, 1)
	assert.Equal(t, "orders", current[0].Service)
}

func TestMonitor_AnomalyClearsWhenMetricRecovers(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{latencyTarget()}})

	f.querier.SetValue("orders_latency_expr", 100)
	for i := 0; i < 25; i++ {
		f.monitor.RunCycle(context.Background())
	}

	f.querier.SetValue("orders_latency_expr", 1000)
	require.Len(t, f.monitor.RunCycle(context.Background()), 1)

	f.querier.SetValue("orders_latency_expr", 100)
	assert.Empty(t, f.monitor.RunCycle(context.Background()))
	assert.Empty(t, f.registry.Current())
}

func TestMonitor_SkipsTargetWithoutData(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{
		latencyTarget(),
		{Service: "users", Metric: "cpu_usage", Query: "users_cpu_expr"},
	}})

	f.querier.SetValue("orders_latency_expr", 100)

	anomalies := f.monitor.RunCycle(context.Background())
	assert.Empty(t, anomalies)

	all := f.registry.All()
	require.Len(t, all, 1)
	assert.Equal(t, "orders", all[0].Service)
}

func TestMonitor_PublishesDetectionCompleted(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{latencyTarget()}})
	completedCh := f.bus.Subscribe(models.EventTypeDetectionCompleted)

	f.querier.SetValue("orders_latency_expr", 100)
	f.monitor.RunCycle(context.Background())

	select {
	case event := <-completedCh:
		assert.Equal(t, models.EventTypeDetectionCompleted, event.Type)
		snapshot, ok := event.Data.([]models.AnomalyPrediction)
		require.True(t, ok)
		assert.Empty(t, snapshot)
	default:
		t.Fatal("expected a detection_completed event")
	}
}

func TestMonitor_SetMethod(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{latencyTarget()}})

	assert.Equal(t, detector.MethodStatistical, f.monitor.Method())

	require.NoError(t, f.monitor.SetMethod(detector.MethodIsolationForest))
	assert.Equal(t, detector.MethodIsolationForest, f.monitor.Method())

	err := f.monitor.SetMethod("clairvoyance")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Equal(t, detector.MethodIsolationForest, f.monitor.Method())
}

func TestMonitor_ResetModels(t *testing.T) {
	f := newMonitorFixture(t, Config{
		Targets: []Target{latencyTarget()},
		Method:  detector.MethodIsolationForest,
	})

	// No per-target model exists until a cycle touches the target.
	assert.Equal(t, 0, f.monitor.ResetModels())

	f.querier.SetValue("orders_latency_expr", 100)
	f.monitor.RunCycle(context.Background())

	assert.Equal(t, 1, f.monitor.ResetModels())
}

func TestMonitor_TargetsReturnsCopy(t *testing.T) {
	f := newMonitorFixture(t, Config{Targets: []Target{latencyTarget()}})

	targets := f.monitor.Targets()
	require.Len(t, targets, 1)
	targets[0].Service = "mutated"

	assert.Equal(t, "orders", f.monitor.Targets()[0].Service)
}
