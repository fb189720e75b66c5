package remediation

import (
	"sync"

	"github.com/sentinelops/sentinel/pkg/models"
)

const DefaultLogCapacity = 100

// ActionLog keeps the most recent executed actions in a bounded FIFO buffer.
type ActionLog struct {
	mu       sync.RWMutex
	entries  []models.RemediationAction
	capacity int
}

func NewActionLog(capacity int) *ActionLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &ActionLog{capacity: capacity}
}

func (l *ActionLog) Append(action models.RemediationAction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, action)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// List returns all retained actions in chronological order.
func (l *ActionLog) List() []models.RemediationAction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.RemediationAction, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n actions, newest first.
func (l *ActionLog) Recent(n int) []models.RemediationAction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}

	out := make([]models.RemediationAction, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// ForService returns retained actions for one service, chronological order.
func (l *ActionLog) ForService(service string) []models.RemediationAction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.RemediationAction
	for _, a := range l.entries {
		if a.Service == service {
			out = append(out, a)
		}
	}
	return out
}

func (l *ActionLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
