package detector

import (
	"math"

	"github.com/sentinelops/sentinel/pkg/models"
)

const (
	MethodStatistical      = "statistical"
	MethodIsolationForest  = "isolation_forest"
	MethodInsufficientData = "insufficient_data"
)

// Result is the verdict a detector returns for one sample. All variants share
// this shape so the remediation side never cares which one produced it.
type Result struct {
	IsAnomaly  bool
	Confidence float64
	Expected   models.ExpectedRange
	Method     string
}

// Detector scores a current value against the historical window for its
// metric key.
type Detector interface {
	Detect(window []float64, current float64) Result
	Method() string
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
