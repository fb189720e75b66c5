package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelops/sentinel/internal/actuator"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/pkg/models"
)

const scaleUpReplicas = 2

// Executor carries out a policy's action and records the outcome. Every
// execution stamps the policy's cooldown and lands in the action log,
// succeeded or not.
type Executor struct {
	actuator  actuator.Actuator
	cooldowns *CooldownTracker
	log       *ActionLog
	publisher *events.Publisher
	metrics   *metrics.Metrics
}

func NewExecutor(act actuator.Actuator, cooldowns *CooldownTracker, log *ActionLog, publisher *events.Publisher, m *metrics.Metrics) *Executor {
	return &Executor{
		actuator:  act,
		cooldowns: cooldowns,
		log:       log,
		publisher: publisher,
		metrics:   m,
	}
}

func (e *Executor) Execute(ctx context.Context, p models.Policy, reason string) models.RemediationAction {
	e.cooldowns.Mark(p.Name)

	details, err := e.dispatch(ctx, p, reason)

	action := models.RemediationAction{
		ID:         models.NewUUID(),
		PolicyName: p.Name,
		Service:    p.Service,
		Action:     p.Action,
		Reason:     reason,
		Status:     models.ActionStatusCompleted,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	if err != nil {
		action.Status = models.ActionStatusFailed
		action.Details = err.Error()
		logger.WithPolicy(p.Name).Errorf("Action %s failed: %v", p.Action, err)
	} else {
		logger.WithPolicy(p.Name).Infof("Action %s completed: %s", p.Action, details)
	}

	e.log.Append(action)
	e.metrics.ActionsExecuted.WithLabelValues(string(action.Action), string(action.Status)).Inc()
	e.publisher.ActionExecuted(action)

	return action
}

func (e *Executor) dispatch(ctx context.Context, p models.Policy, reason string) (string, error) {
	switch p.Action {
	case models.ActionRestartContainer:
		return e.actuator.Restart(ctx, p.Service)
	case models.ActionScaleUp:
		return e.actuator.Scale(ctx, p.Service, scaleUpReplicas)
	case models.ActionAlert:
		return e.actuator.Alert(ctx, p.Service, reason)
	default:
		return "", fmt.Errorf("unknown action type: %s", p.Action)
	}
}
