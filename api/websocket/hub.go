package websocket

import (
	"sync"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/pkg/models"
)

const defaultBroadcastBuffer = 256

// SnapshotFunc supplies the active-anomaly snapshot sent to a client on
// connect.
type SnapshotFunc func() []models.AnomalyPrediction

// Hub owns the connected clients. All per-client state, including the
// dedup seen-sets, is touched only from the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	anomalies  chan []models.AnomalyPrediction
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	snapshot   SnapshotFunc
	seenLimit  int
}

func NewHub(snapshot SnapshotFunc, seenLimit int) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, defaultBroadcastBuffer),
		anomalies:  make(chan []models.AnomalyPrediction, defaultBroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshot:   snapshot,
		seenLimit:  seenLimit,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendSnapshot(client)
			logger.Infof("WebSocket client connected (total: %d)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Infof("WebSocket client disconnected (total: %d)", h.ClientCount())

		case preds := <-h.anomalies:
			h.fanOutAnomalies(preds)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// sendSnapshot delivers the current active anomalies to a newly connected
// client and marks them seen so the next cycle does not repeat them.
func (h *Hub) sendSnapshot(client *Client) {
	if h.snapshot == nil {
		return
	}

	preds := client.filter(h.snapshot())
	for _, p := range preds {
		client.seen.add(p.Identity())
	}

	select {
	case client.send <- anomaliesMessage(MessageTypeSnapshot, preds).JSON():
	default:
	}
}

// fanOutAnomalies sends each client only the anomalies it has not received
// yet. Clients with nothing new get nothing.
func (h *Hub) fanOutAnomalies(preds []models.AnomalyPrediction) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		var fresh []models.AnomalyPrediction
		for _, p := range client.filter(preds) {
			if client.seen.add(p.Identity()) {
				fresh = append(fresh, p)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		select {
		case client.send <- anomaliesMessage(MessageTypeAnomalies, fresh).JSON():
		default:
		}
	}
}

// BroadcastAnomalies hands a detection cycle's anomalies to the hub for
// per-client dedup delivery.
func (h *Hub) BroadcastAnomalies(preds []models.AnomalyPrediction) {
	select {
	case h.anomalies <- preds:
	default:
		logger.Warn("Anomaly channel full, dropping batch")
	}
}

func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
