package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func steadyWindow(value float64, jitter []float64) []float64 {
	window := make([]float64, 0, len(jitter))
	for _, j := range jitter {
		window = append(window, value+j)
	}
	return window
}

func TestStatistical_InsufficientSamples(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	result := d.Detect([]float64{100, 101, 99, 100}, 500)

	assert.False(t, result.IsAnomaly)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, MethodStatistical, result.Method)
}

func TestStatistical_FlagsSpikeAgainstSteadyBaseline(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	jitter := []float64{0, 1, -1, 0.5, -0.5, 1, -1, 0, 0.5, -0.5,
		0, 1, -1, 0.5, -0.5, 1, -1, 0, 0.5, -0.5}
	window := append(steadyWindow(100, jitter), 500)

	result := d.Detect(window, 500)

	assert.True(t, result.IsAnomaly)
	assert.Greater(t, result.Confidence, 0.8)
	assert.Equal(t, MethodStatistical, result.Method)
	assert.Less(t, result.Expected.Max, 500.0)
}

func TestStatistical_NormalValueWithinBand(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	jitter := []float64{0, 1, -1, 0.5, -0.5, 1, -1, 0, 0.5, -0.5}
	window := steadyWindow(100, jitter)

	result := d.Detect(window, 100.8)

	assert.False(t, result.IsAnomaly)
	assert.Zero(t, result.Confidence)
}

func TestStatistical_FlatWindowDoesNotFlagRepeat(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	window := []float64{100, 100, 100, 100, 100, 100}
	result := d.Detect(window, 100)

	assert.False(t, result.IsAnomaly)
	// Synthetic spread of 10% keeps a modest deviation inside the band
	assert.InDelta(t, 75.0, result.Expected.Min, 0.001)
	assert.InDelta(t, 125.0, result.Expected.Max, 0.001)
}

func TestStatistical_FlatZeroWindowUsesUnitSpread(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	window := []float64{0, 0, 0, 0, 0, 0}
	result := d.Detect(window, 10)

	assert.True(t, result.IsAnomaly)
	assert.InDelta(t, -2.5, result.Expected.Min, 0.001)
	assert.InDelta(t, 2.5, result.Expected.Max, 0.001)
}

func TestStatistical_ConfidenceCapped(t *testing.T) {
	d := NewStatistical(StatisticalConfig{})

	jitter := []float64{0, 0.1, -0.1, 0.1, -0.1, 0.1, -0.1, 0, 0.1, -0.1}
	window := steadyWindow(100, jitter)

	result := d.Detect(window, 100000)

	assert.True(t, result.IsAnomaly)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
}

func TestStatistical_UsesTrailingWindowOnly(t *testing.T) {
	d := NewStatistical(StatisticalConfig{WindowSize: 5})

	// Old samples sit far from the recent plateau and must be ignored
	window := []float64{1000, 1000, 1000, 100, 100, 100, 100, 100}
	result := d.Detect(window, 101)

	assert.False(t, result.IsAnomaly)
}
