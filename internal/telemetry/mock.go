package telemetry

import (
	"context"
	"sync"
	"time"
)

// MockQuerier serves canned values per expression. Used in tests and by the
// detection loop when no telemetry backend is available.
type MockQuerier struct {
	mu     sync.RWMutex
	values map[string]float64
	errs   map[string]error
}

func NewMockQuerier() *MockQuerier {
	return &MockQuerier{
		values: make(map[string]float64),
		errs:   make(map[string]error),
	}
}

func (m *MockQuerier) SetValue(expr string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[expr] = value
	delete(m.errs, expr)
}

func (m *MockQuerier) SetError(expr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[expr] = err
}

func (m *MockQuerier) Query(_ context.Context, expr string) (Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errs[expr]; ok {
		return Sample{}, err
	}
	value, ok := m.values[expr]
	if !ok {
		return Sample{}, ErrNoData
	}
	return Sample{Value: value, Timestamp: time.Now()}, nil
}

func (m *MockQuerier) HealthCheck(_ context.Context) error {
	return nil
}

func (m *MockQuerier) Close() error {
	return nil
}
