package detector

import "math"

const (
	defaultWindowSize  = 20
	defaultSensitivity = 2.5
	minSamples         = 5
	maxConfidence      = 0.95
)

// Statistical flags values outside a moving mean ± sensitivity·σ band.
type Statistical struct {
	windowSize  int
	sensitivity float64
}

type StatisticalConfig struct {
	WindowSize  int
	Sensitivity float64
}

func NewStatistical(cfg StatisticalConfig) *Statistical {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = defaultSensitivity
	}
	return &Statistical{
		windowSize:  cfg.WindowSize,
		sensitivity: cfg.Sensitivity,
	}
}

func (d *Statistical) Method() string {
	return MethodStatistical
}

func (d *Statistical) Detect(window []float64, current float64) Result {
	if len(window) < minSamples {
		return Result{Method: MethodStatistical}
	}

	recent := tail(window, d.windowSize)
	m := mean(recent)
	sd := stddev(recent, m)

	// A flat window would produce a zero-width band; substitute a synthetic
	// spread so a repeat of the same value is not flagged.
	if sd == 0 {
		if m > 0 {
			sd = m * 0.1
		} else {
			sd = 1.0
		}
	}

	expected := expectedRange(m, sd, d.sensitivity)
	isAnomaly := current < expected.Min || current > expected.Max

	confidence := 0.0
	if isAnomaly {
		z := math.Abs(current-m) / sd
		confidence = math.Min(maxConfidence, 0.5+z/10)
	}

	return Result{
		IsAnomaly:  isAnomaly,
		Confidence: confidence,
		Expected:   expected,
		Method:     MethodStatistical,
	}
}
