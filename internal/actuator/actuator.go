package actuator

import (
	"context"
	"errors"
)

var (
	ErrActuatorUnavailable = errors.New("actuator unavailable")
	ErrActionRejected      = errors.New("action rejected by actuator")
)

// Actuator applies remediation actions to the environment. Implementations
// return a human-readable outcome message alongside the error.
type Actuator interface {
	Restart(ctx context.Context, service string) (string, error)
	Scale(ctx context.Context, service string, replicas int) (string, error)
	Alert(ctx context.Context, service, message string) (string, error)
}
