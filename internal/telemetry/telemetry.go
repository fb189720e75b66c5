package telemetry

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQueryFailed     = errors.New("telemetry query failed")
	ErrTimeout         = errors.New("telemetry query timeout")
	ErrNoData          = errors.New("no data for query")
	ErrInvalidResponse = errors.New("invalid response from telemetry backend")
)

// Sample is one scalar observation returned by the telemetry backend.
type Sample struct {
	Value     float64
	Timestamp time.Time
}

// Querier evaluates an instant query against the telemetry backend. Absence
// of data is ErrNoData, which callers treat as "skip this metric this cycle"
// rather than a failure.
type Querier interface {
	Query(ctx context.Context, expr string) (Sample, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the querier.
	Close() error
}
