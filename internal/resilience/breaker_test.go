package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

func failing() error { return errBackend }
func succeeding() error { return nil }

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 3, Cooloff: time.Hour})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(failing), errBackend)
	}
	assert.Equal(t, StateOpen, b.State())

	assert.ErrorIs(t, b.Execute(succeeding), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 3, Cooloff: time.Hour})

	assert.Error(t, b.Execute(failing))
	assert.Error(t, b.Execute(failing))
	assert.NoError(t, b.Execute(succeeding))
	assert.Error(t, b.Execute(failing))
	assert.Error(t, b.Execute(failing))

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenAfterCooloff(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Cooloff: 10 * time.Millisecond, HalfOpenMax: 2})

	assert.Error(t, b.Execute(failing))
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// First call after the cooloff probes the backend
	assert.NoError(t, b.Execute(succeeding))
	assert.Equal(t, StateHalfOpen, b.State())

	assert.NoError(t, b.Execute(succeeding))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Cooloff: 10 * time.Millisecond})

	assert.Error(t, b.Execute(failing))
	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, b.Execute(failing), errBackend)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Cooloff: time.Hour})

	assert.Error(t, b.Execute(failing))
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Execute(succeeding))
}

func TestBreaker_StateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
