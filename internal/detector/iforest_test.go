package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baselineSamples(n int) []float64 {
	pattern := []float64{99, 100, 101, 100.5, 99.5}
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pattern[i%len(pattern)])
	}
	return out
}

func TestIsolationForest_InsufficientDataBeforeTraining(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	result := d.Detect(baselineSamples(30), 500)

	assert.False(t, result.IsAnomaly)
	assert.Equal(t, MethodInsufficientData, result.Method)
	assert.False(t, d.IsTrained())
}

func TestIsolationForest_TrainsOnceEnoughSamples(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	result := d.Detect(baselineSamples(50), 100)

	assert.True(t, d.IsTrained())
	assert.False(t, result.IsAnomaly)
	assert.Equal(t, MethodIsolationForest, result.Method)
}

func TestIsolationForest_FlagsExtremeOutlier(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	window := append(baselineSamples(50), 500)
	result := d.Detect(window, 500)

	assert.True(t, result.IsAnomaly)
	assert.Greater(t, result.Confidence, 0.6)
	assert.Equal(t, MethodIsolationForest, result.Method)
}

func TestIsolationForest_FlagsOutliersNotSeenInTraining(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	baseline := baselineSamples(50)
	trained := d.Detect(baseline, 100)
	assert.False(t, trained.IsAnomaly)
	assert.True(t, d.IsTrained())

	// Values beyond the trained range must score past the cutoff even
	// though the model never saw them.
	for _, v := range []float64{135, 500, 10000} {
		result := d.Detect(baseline, v)
		assert.True(t, result.IsAnomaly, "value %v should be flagged", v)
		assert.Greater(t, result.Confidence, 0.6, "value %v", v)
	}

	// An in-range value still passes.
	assert.False(t, d.Detect(baseline, 100.5).IsAnomaly)
}

func TestIsolationForest_ModelIsNotRetrainedImplicitly(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	d.Detect(baselineSamples(50), 100)
	assert.True(t, d.IsTrained())

	// A shifted window must not change the verdict baseline: the model
	// trained once and stays put until an explicit reset.
	shifted := make([]float64, 60)
	for i := range shifted {
		shifted[i] = 1000
	}
	result := d.Detect(shifted, 500)

	assert.True(t, d.IsTrained())
	assert.True(t, result.IsAnomaly)
}

func TestIsolationForest_ResetRetrains(t *testing.T) {
	d := NewIsolationForest(IsolationForestConfig{Seed: 42})

	d.Detect(baselineSamples(50), 100)
	assert.True(t, d.IsTrained())

	d.Reset()
	assert.False(t, d.IsTrained())

	result := d.Detect(baselineSamples(30), 100)
	assert.Equal(t, MethodInsufficientData, result.Method)
}

func TestAvgPathLength(t *testing.T) {
	assert.Equal(t, 0.0, avgPathLength(1))
	assert.Equal(t, 1.0, avgPathLength(2))
	assert.InDelta(t, 6.98, avgPathLength(50), 0.05)
}
