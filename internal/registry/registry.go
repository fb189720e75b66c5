package registry

import (
	"sync"

	"github.com/sentinelops/sentinel/pkg/models"
)

// Registry holds the latest prediction per metric key plus the wholesale
// snapshot of currently-anomalous predictions from the most recent completed
// detection cycle. Written only by the detection cycle; read by the
// remediation controller, the HTTP handlers, and the stream notifier.
type Registry struct {
	mu      sync.RWMutex
	latest  map[string]models.AnomalyPrediction
	current []models.AnomalyPrediction
}

func New() *Registry {
	return &Registry{
		latest: make(map[string]models.AnomalyPrediction),
	}
}

// Record stores the latest prediction for its metric key.
func (r *Registry) Record(pred models.AnomalyPrediction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest[pred.Key()] = pred
}

// SetCurrent replaces the active-anomaly snapshot in one step. A prediction
// that stopped being anomalous simply disappears from the next snapshot.
func (r *Registry) SetCurrent(anomalies []models.AnomalyPrediction) {
	snapshot := make([]models.AnomalyPrediction, len(anomalies))
	copy(snapshot, anomalies)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = snapshot
}

// Current returns a point-in-time copy of the active-anomaly snapshot.
func (r *Registry) Current() []models.AnomalyPrediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AnomalyPrediction, len(r.current))
	copy(out, r.current)
	return out
}

// All returns every latest prediction, anomalous or not.
func (r *Registry) All() []models.AnomalyPrediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AnomalyPrediction, 0, len(r.latest))
	for _, p := range r.latest {
		out = append(out, p)
	}
	return out
}

// ForService returns the latest predictions belonging to one service.
func (r *Registry) ForService(service string) []models.AnomalyPrediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AnomalyPrediction
	for _, p := range r.latest {
		if p.Service == service {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Get(key string) (models.AnomalyPrediction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.latest[key]
	return p, ok
}
