package simulator

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// world holds the simulated state of every service metric: a baseline, random
// noise, and at most one active spike per key.
type world struct {
	mu   sync.Mutex
	keys map[string]*metricState
	rng  *rand.Rand
}

type metricState struct {
	Service  string
	Metric   string
	Baseline float64
	Noise    float64
	spike    *spike
}

type spike struct {
	magnitude float64
	until     time.Time
}

func newWorld(seed int64) *world {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := &world{
		keys: make(map[string]*metricState),
		rng:  rand.New(rand.NewSource(seed)),
	}

	baselines := map[string][2]float64{
		"latency":    {120.0, 8.0},
		"error_rate": {0.02, 0.004},
		"cpu_usage":  {40.0, 3.0},
	}

	for _, service := range []string{"orders", "users", "payments"} {
		for metric, b := range baselines {
			w.keys[service+"_"+metric] = &metricState{
				Service:  service,
				Metric:   metric,
				Baseline: b[0],
				Noise:    b[1],
			}
		}
	}
	return w
}

// value produces the current reading for a key: baseline plus gaussian noise,
// multiplied by the spike magnitude while one is active.
func (w *world) value(key string) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.keys[key]
	if !ok {
		return 0, false
	}

	v := state.Baseline + w.rng.NormFloat64()*state.Noise

	if state.spike != nil {
		if time.Now().After(state.spike.until) {
			state.spike = nil
		} else {
			v *= state.spike.magnitude
		}
	}

	if v < 0 {
		v = 0
	}
	return v, true
}

// injectSpike multiplies a key's readings by magnitude for the duration.
func (w *world) injectSpike(service, metric string, magnitude float64, duration time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.keys[service+"_"+metric]
	if !ok {
		return false
	}

	state.spike = &spike{
		magnitude: magnitude,
		until:     time.Now().Add(duration),
	}
	return true
}

// clearSpikes removes active spikes for a service, simulating a remediation
// that actually fixed the problem.
func (w *world) clearSpikes(service string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cleared := 0
	for key, state := range w.keys {
		if strings.HasPrefix(key, service+"_") && state.spike != nil {
			state.spike = nil
			cleared++
		}
	}
	return cleared
}

// resolve maps a PromQL expression back to a simulated key by matching the
// service label and the metric name embedded in the query.
func (w *world) resolve(query string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var service string
	for _, s := range []string{"orders", "users", "payments"} {
		if strings.Contains(query, `service="`+s+`"`) {
			service = s
			break
		}
	}
	if service == "" {
		return "", false
	}

	var metric string
	switch {
	case strings.Contains(query, "http_request_duration"):
		metric = "latency"
	case strings.Contains(query, "http_requests_total"):
		metric = "error_rate"
	case strings.Contains(query, "container_cpu"):
		metric = "cpu_usage"
	default:
		return "", false
	}

	return service + "_" + metric, true
}
