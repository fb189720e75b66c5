package events

import (
	"github.com/sentinelops/sentinel/pkg/models"
)

type Publisher struct {
	bus *EventBus
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) AnomalyDetected(pred models.AnomalyPrediction) {
	event := models.NewEvent(models.EventTypeAnomalyDetected, pred.Service, "Anomaly detected: "+pred.Metric).
		WithData(pred)

	switch pred.Severity {
	case models.SeverityCritical:
		event.WithSeverity(models.EventSeverityCritical)
	case models.SeverityWarning:
		event.WithSeverity(models.EventSeverityWarning)
	}

	p.bus.Publish(event)
}

// DetectionCompleted carries the wholesale active-anomaly snapshot for one
// cycle; the stream bridge diffs consecutive snapshots per subscriber.
func (p *Publisher) DetectionCompleted(anomalies []models.AnomalyPrediction) {
	event := models.NewEvent(models.EventTypeDetectionCompleted, "", "Detection cycle completed").
		WithData(anomalies)
	p.bus.Publish(event)
}

func (p *Publisher) ActionExecuted(action models.RemediationAction) {
	eventType := models.EventTypeActionExecuted
	severity := models.EventSeverityWarning
	msg := "Remediation action executed: " + string(action.Action)

	if !action.Succeeded() {
		eventType = models.EventTypeActionFailed
		severity = models.EventSeverityCritical
		msg = "Remediation action failed: " + string(action.Action)
	}

	event := models.NewEvent(eventType, action.Service, msg).
		WithSeverity(severity).
		WithData(action)
	p.bus.Publish(event)
}

func (p *Publisher) PolicyChanged(name, change string) {
	event := models.NewEvent(models.EventTypePolicyChanged, "", "Policy "+change+": "+name)
	p.bus.Publish(event)
}

func (p *Publisher) Alert(service, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, service, message).
		WithSeverity(models.EventSeverityWarning).
		WithData(data)
	p.bus.Publish(event)
}

func (p *Publisher) Error(service, message string, err error) {
	event := models.NewEvent(models.EventTypeError, service, message).
		WithSeverity(models.EventSeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.bus.Publish(event)
}
