package events

import (
	"context"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/pkg/database"
	"github.com/sentinelops/sentinel/pkg/database/queries"
	"github.com/sentinelops/sentinel/pkg/models"
)

// EventLogger consumes the full event stream, writes structured log lines,
// and persists anomalies and remediation actions when a database is
// configured. With a nil database it only logs.
type EventLogger struct {
	anomalyRepo *queries.AnomalyEventRepository
	actionRepo  *queries.ActionRepository
	eventChan   <-chan *models.Event
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	l := &EventLogger{
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
	if db != nil {
		l.anomalyRepo = queries.NewAnomalyEventRepository(db.DB)
		l.actionRepo = queries.NewActionRepository(db.DB)
	}
	return l
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"service":    event.Service,
		"severity":   event.Severity,
	})

	switch event.Severity {
	case models.EventSeverityCritical:
		entry.Error(event.Message)
	case models.EventSeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	switch event.Type {
	case models.EventTypeAnomalyDetected:
		l.persistAnomaly(event)
	case models.EventTypeActionExecuted, models.EventTypeActionFailed:
		l.persistAction(event)
	}
}

func (l *EventLogger) persistAnomaly(event *models.Event) {
	if l.anomalyRepo == nil {
		return
	}

	pred, ok := event.Data.(models.AnomalyPrediction)
	if !ok {
		return
	}

	if err := l.anomalyRepo.Insert(l.ctx, pred); err != nil {
		logger.Errorf("Failed to persist anomaly event: %v", err)
	}
}

func (l *EventLogger) persistAction(event *models.Event) {
	if l.actionRepo == nil {
		return
	}

	action, ok := event.Data.(models.RemediationAction)
	if !ok {
		return
	}

	if err := l.actionRepo.Insert(l.ctx, action); err != nil {
		logger.Errorf("Failed to persist remediation action: %v", err)
	}
}
