package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/detector"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/internal/telemetry"
	"github.com/sentinelops/sentinel/pkg/models"
)

var ErrUnknownMethod = errors.New("unknown detection method")

// Target is one service metric the monitor samples each cycle.
type Target struct {
	Service string
	Metric  string
	Query   string
}

func (t Target) Key() string {
	return t.Service + "_" + t.Metric
}

type Config struct {
	Interval        time.Duration
	Targets         []Target
	Method          string
	Statistical     detector.StatisticalConfig
	IsolationForest detector.IsolationForestConfig
}

// Monitor drives the detection loop: sample every target, score the sample
// against its history, classify, and publish the cycle's anomaly snapshot.
type Monitor struct {
	cfg       Config
	querier   telemetry.Querier
	history   *history.Store
	registry  *registry.Registry
	publisher *events.Publisher
	metrics   *metrics.Metrics

	mu          sync.RWMutex
	method      string
	statistical *detector.Statistical
	iforests    map[string]*detector.IsolationForestDetector
}

func New(cfg Config, querier telemetry.Querier, hist *history.Store, reg *registry.Registry, publisher *events.Publisher, m *metrics.Metrics) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	method := cfg.Method
	if method == "" {
		method = detector.MethodStatistical
	}

	return &Monitor{
		cfg:         cfg,
		querier:     querier,
		history:     hist,
		registry:    reg,
		publisher:   publisher,
		metrics:     m,
		method:      method,
		statistical: detector.NewStatistical(cfg.Statistical),
		iforests:    make(map[string]*detector.IsolationForestDetector),
	}
}

// Run executes detection cycles until the context is cancelled. The first
// cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) {
	logger.Infof("Monitor started: %d targets, interval %s, method %s",
		len(m.cfg.Targets), m.cfg.Interval, m.Method())

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Monitor stopped")
			return
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle samples every target once and returns the anomalies found. A
// target whose query yields no data is skipped for the cycle; query failures
// are counted but never abort the rest of the cycle.
func (m *Monitor) RunCycle(ctx context.Context) []models.AnomalyPrediction {
	start := time.Now()
	anomalies := make([]models.AnomalyPrediction, 0)

	for _, target := range m.cfg.Targets {
		pred, err := m.checkTarget(ctx, target)
		if err != nil {
			if errors.Is(err, telemetry.ErrNoData) {
				logger.WithService(target.Service).Debugf("No data for metric %s, skipping", target.Metric)
				continue
			}
			m.metrics.DetectionErrors.Inc()
			logger.WithService(target.Service).Errorf("Failed to check %s: %v", target.Metric, err)
			continue
		}

		m.registry.Record(pred)

		if pred.IsAnomaly {
			anomalies = append(anomalies, pred)
			m.metrics.AnomaliesDetected.WithLabelValues(pred.Service, pred.Metric, string(pred.Severity)).Inc()
			m.publisher.AnomalyDetected(pred)
		}
	}

	m.registry.SetCurrent(anomalies)
	m.publisher.DetectionCompleted(anomalies)

	m.metrics.DetectionCycles.Inc()
	m.metrics.ActiveAnomalies.Set(float64(len(anomalies)))
	m.metrics.CycleDuration.Observe(time.Since(start).Seconds())

	if len(anomalies) > 0 {
		logger.Infof("Detection cycle completed: %d anomalies", len(anomalies))
	}
	return anomalies
}

func (m *Monitor) checkTarget(ctx context.Context, target Target) (models.AnomalyPrediction, error) {
	sample, err := m.querier.Query(ctx, target.Query)
	if err != nil {
		return models.AnomalyPrediction{}, err
	}

	key := target.Key()
	m.metrics.MetricValue.WithLabelValues(target.Service, target.Metric).Set(sample.Value)

	// The sample joins the window before detection, so the window the
	// detector sees always includes the value under test.
	m.history.Record(key, sample.Value)
	window := m.history.Window(key)

	result := m.detectorFor(key).Detect(window, sample.Value)

	return models.AnomalyPrediction{
		Service:         target.Service,
		Metric:          target.Metric,
		CurrentValue:    sample.Value,
		ExpectedRange:   result.Expected,
		IsAnomaly:       result.IsAnomaly,
		Confidence:      result.Confidence,
		Severity:        detector.ClassifySeverity(result.IsAnomaly, result.Confidence),
		DetectionMethod: result.Method,
		Timestamp:       time.Now().UTC(),
	}, nil
}

func (m *Monitor) detectorFor(key string) detector.Detector {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.method == detector.MethodIsolationForest {
		d, ok := m.iforests[key]
		if !ok {
			d = detector.NewIsolationForest(m.cfg.IsolationForest)
			m.iforests[key] = d
		}
		return d
	}
	return m.statistical
}

func (m *Monitor) Method() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.method
}

// SetMethod switches the active detector for subsequent cycles.
func (m *Monitor) SetMethod(method string) error {
	if method != detector.MethodStatistical && method != detector.MethodIsolationForest {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.method != method {
		logger.Infof("Detection method changed: %s -> %s", m.method, method)
		m.method = method
	}
	return nil
}

// ResetModels discards all trained isolation forest models so they retrain on
// current history at the next cycle.
func (m *Monitor) ResetModels() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.iforests {
		d.Reset()
	}
	return len(m.iforests)
}

func (m *Monitor) Targets() []Target {
	out := make([]Target, len(m.cfg.Targets))
	copy(out, m.cfg.Targets)
	return out
}
