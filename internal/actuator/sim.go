package actuator

import (
	"context"
	"fmt"
	"sync"

	"github.com/sentinelops/sentinel/internal/logger"
)

// SimActuator simulates action execution in memory. It is the default
// actuator when no orchestration endpoint is configured, and doubles as the
// test double for the remediation path.
type SimActuator struct {
	mu       sync.Mutex
	restarts map[string]int
	replicas map[string]int
	alerts   []string
	failNext map[string]error
}

func NewSimActuator() *SimActuator {
	return &SimActuator{
		restarts: make(map[string]int),
		replicas: make(map[string]int),
		failNext: make(map[string]error),
	}
}

// FailNext makes the next action of the given type against the service fail
// with err. Keyed by "action:service".
func (s *SimActuator) FailNext(action, service string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[action+":"+service] = err
}

func (s *SimActuator) consumeFailure(action, service string) error {
	key := action + ":" + service
	if err, ok := s.failNext[key]; ok {
		delete(s.failNext, key)
		return err
	}
	return nil
}

func (s *SimActuator) Restart(ctx context.Context, service string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.consumeFailure("restart", service); err != nil {
		return "", err
	}

	s.restarts[service]++
	logger.WithService(service).Info("Simulated container restart")
	return fmt.Sprintf("Container %s restarted", service), nil
}

func (s *SimActuator) Scale(ctx context.Context, service string, replicas int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.consumeFailure("scale", service); err != nil {
		return "", err
	}

	s.replicas[service] = replicas
	logger.WithService(service).Infof("Simulated scale to %d replicas", replicas)
	return fmt.Sprintf("Service %s scaled to %d replicas", service, replicas), nil
}

func (s *SimActuator) Alert(ctx context.Context, service, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.consumeFailure("alert", service); err != nil {
		return "", err
	}

	s.alerts = append(s.alerts, service+": "+message)
	logger.WithService(service).Warnf("ALERT: %s", message)
	return fmt.Sprintf("Alert sent for %s", service), nil
}

func (s *SimActuator) RestartCount(service string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[service]
}

func (s *SimActuator) Replicas(service string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replicas[service]
}

func (s *SimActuator) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.alerts))
	copy(out, s.alerts)
	return out
}
