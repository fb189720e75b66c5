package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/internal/resilience"
)

// ResilientQuerier wraps another querier with retries and a circuit breaker.
// ErrNoData passes through untouched: an empty result is an answer, not a
// backend failure.
type ResilientQuerier struct {
	querier       Querier
	breaker       *resilience.Breaker
	retryAttempts int
	retryDelay    time.Duration
}

type ResilientConfig struct {
	Querier       Querier
	MaxFailures   int
	Cooloff       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientQuerier(cfg ResilientConfig) *ResilientQuerier {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:          "telemetry",
		MaxFailures:   cfg.MaxFailures,
		Cooloff:       cfg.Cooloff,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientQuerier{
		querier:       cfg.Querier,
		breaker:       breaker,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

func (q *ResilientQuerier) Query(ctx context.Context, expr string) (Sample, error) {
	var sample Sample
	var lastErr error

	err := q.breaker.Execute(func() error {
		for attempt := 1; attempt <= q.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			sample, err = q.querier.Query(ctx, expr)
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrNoData) {
				lastErr = err
				return nil
			}

			lastErr = err
			logger.Warnf("Telemetry query attempt %d/%d failed: %v", attempt, q.retryAttempts, err)

			if attempt < q.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(q.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return Sample{}, err
	}
	if errors.Is(lastErr, ErrNoData) {
		return Sample{}, ErrNoData
	}
	return sample, nil
}

func (q *ResilientQuerier) HealthCheck(ctx context.Context) error {
	return q.querier.HealthCheck(ctx)
}

func (q *ResilientQuerier) Close() error {
	return q.querier.Close()
}

func (q *ResilientQuerier) CircuitState() resilience.State {
	return q.breaker.State()
}
