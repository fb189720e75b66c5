package history

import "sync"

const DefaultCapacity = 100

// Store keeps a bounded FIFO window of recent samples per metric key.
// Written only by the detection cycle; read by anyone.
type Store struct {
	mu       sync.RWMutex
	windows  map[string][]float64
	capacity int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		windows:  make(map[string][]float64),
		capacity: capacity,
	}
}

// Record appends a sample for key, evicting the oldest once the window is at
// capacity.
func (s *Store) Record(key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := append(s.windows[key], value)
	if len(window) > s.capacity {
		window = window[len(window)-s.capacity:]
	}
	s.windows[key] = window
}

// Window returns a copy of the current buffer for key. Absent keys yield an
// empty window.
func (s *Store) Window(key string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.windows[key]
	out := make([]float64, len(window))
	copy(out, window)
	return out
}

func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[key])
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.windows))
	for k := range s.windows {
		keys = append(keys, k)
	}
	return keys
}
