package websocket

import (
	"context"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/pkg/models"
)

// EventBridge forwards the internal event stream to WebSocket clients.
// Detection snapshots go through the hub's dedup path; action and alert
// events are broadcast as-is.
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	switch event.Type {
	case models.EventTypeDetectionCompleted:
		if preds, ok := event.Data.([]models.AnomalyPrediction); ok {
			b.hub.BroadcastAnomalies(preds)
		}

	case models.EventTypeActionExecuted, models.EventTypeActionFailed:
		b.hub.Broadcast(NewMessage(MessageTypeAction, event.Service, event.Data).JSON())

	case models.EventTypeAlert:
		b.hub.Broadcast(NewMessage(MessageTypeAlert, event.Service, AlertData{
			Severity: string(event.Severity),
			Message:  event.Message,
		}).JSON())

	case models.EventTypeError:
		b.hub.Broadcast(NewMessage(MessageTypeError, event.Service, event.Data).JSON())
	}
}
