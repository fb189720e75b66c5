package websocket

import (
	"encoding/json"
	"time"

	"github.com/sentinelops/sentinel/pkg/models"
)

type MessageType string

const (
	MessageTypeSnapshot  MessageType = "snapshot"
	MessageTypeAnomalies MessageType = "anomalies"
	MessageTypeAction    MessageType = "action"
	MessageTypeAlert     MessageType = "alert"
	MessageTypeError     MessageType = "error"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Service   string      `json:"service,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, service string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		Service:   service,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func anomaliesMessage(msgType MessageType, preds []models.AnomalyPrediction) *OutgoingMessage {
	return NewMessage(msgType, "", map[string]interface{}{
		"anomalies": preds,
		"count":     len(preds),
	})
}
