package remediation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/pkg/models"
)

type Config struct {
	Interval time.Duration
	Enabled  bool
}

// Controller closes the loop: fetch active anomalies, match them against the
// policy set, and execute the actions whose cooldowns allow it.
type Controller struct {
	feed      AnomalyFeed
	policies  *policy.Store
	executor  *Executor
	cooldowns *CooldownTracker
	interval  time.Duration

	mu        sync.RWMutex
	enabled   bool
	lastCycle time.Time
	cycles    int64
}

func NewController(cfg Config, feed AnomalyFeed, policies *policy.Store, executor *Executor, cooldowns *CooldownTracker) *Controller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Controller{
		feed:      feed,
		policies:  policies,
		executor:  executor,
		cooldowns: cooldowns,
		interval:  interval,
		enabled:   cfg.Enabled,
	}
}

// Run executes remediation cycles until the context is cancelled.
func (c *Controller) Run(ctx context.Context) {
	logger.Infof("Remediation controller started: interval %s, enabled %t", c.interval, c.Enabled())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Remediation controller stopped")
			return
		case <-ticker.C:
			c.runCycleSafe(ctx)
		}
	}
}

// runCycleSafe contains a panicking cycle so one bad cycle cannot take the
// loop down.
func (c *Controller) runCycleSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Remediation cycle panicked: %v", r)
		}
	}()

	if _, err := c.RunCycle(ctx); err != nil {
		logger.Errorf("Remediation cycle failed: %v", err)
	}
}

// RunCycle evaluates the current anomaly snapshot once and returns the
// actions executed. A disabled controller does nothing.
func (c *Controller) RunCycle(ctx context.Context) ([]models.RemediationAction, error) {
	if !c.Enabled() {
		return nil, nil
	}

	anomalies, err := c.feed.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch anomalies: %w", err)
	}

	var executed []models.RemediationAction
	for _, anomaly := range anomalies {
		if !anomaly.IsAnomaly {
			continue
		}
		executed = append(executed, c.evaluate(ctx, anomaly)...)
	}

	c.mu.Lock()
	c.lastCycle = time.Now().UTC()
	c.cycles++
	c.mu.Unlock()

	return executed, nil
}

// Evaluate matches one anomaly against the policy set and executes every
// matching policy outside its cooldown. Also serves the manual evaluation
// endpoint.
func (c *Controller) Evaluate(ctx context.Context, anomaly models.AnomalyPrediction) []models.RemediationAction {
	return c.evaluate(ctx, anomaly)
}

func (c *Controller) evaluate(ctx context.Context, anomaly models.AnomalyPrediction) []models.RemediationAction {
	matched := c.policies.Matching(anomaly.Service, anomaly.Metric, anomaly.CurrentValue)

	var executed []models.RemediationAction
	for _, p := range matched {
		if !c.cooldowns.Allow(p) {
			logger.WithPolicy(p.Name).Debugf("Policy in cooldown, %s remaining", c.cooldowns.Remaining(p))
			continue
		}

		reason := fmt.Sprintf("Anomaly on %s: %s=%.2f (severity %s, confidence %.2f)",
			anomaly.Service, anomaly.Metric, anomaly.CurrentValue, anomaly.Severity, anomaly.Confidence)
		executed = append(executed, c.executor.Execute(ctx, p, reason))
	}
	return executed
}

func (c *Controller) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Toggle enables or disables the controller and reports the new state.
func (c *Controller) Toggle(enabled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enabled != enabled {
		logger.Infof("Remediation controller enabled=%t", enabled)
	}
	c.enabled = enabled
	return c.enabled
}

type Status struct {
	Enabled     bool                 `json:"enabled"`
	Interval    string               `json:"interval"`
	Cycles      int64                `json:"cycles"`
	LastCycle   *time.Time           `json:"last_cycle,omitempty"`
	PolicyCount int                  `json:"policy_count"`
	ActionCount int                  `json:"action_count"`
	Cooldowns   map[string]time.Time `json:"cooldowns,omitempty"`
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		Enabled:     c.enabled,
		Interval:    c.interval.String(),
		Cycles:      c.cycles,
		PolicyCount: c.policies.Count(),
		ActionCount: c.executor.log.Count(),
		Cooldowns:   c.cooldowns.Snapshot(),
	}
	if !c.lastCycle.IsZero() {
		last := c.lastCycle
		s.LastCycle = &last
	}
	return s
}
