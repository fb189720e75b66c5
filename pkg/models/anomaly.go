package models

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ExpectedRange is the band a metric is expected to stay within.
type ExpectedRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// AnomalyPrediction is the verdict for one (service, metric) sample.
// Predictions are immutable; the next detection cycle supersedes them.
type AnomalyPrediction struct {
	Service         string        `json:"service"`
	Metric          string        `json:"metric"`
	CurrentValue    float64       `json:"current_value"`
	ExpectedRange   ExpectedRange `json:"expected_range"`
	IsAnomaly       bool          `json:"is_anomaly"`
	Confidence      float64       `json:"confidence"`
	Severity        Severity      `json:"severity"`
	DetectionMethod string        `json:"detection_method"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Key identifies the (service, metric) pair the prediction belongs to.
func (p AnomalyPrediction) Key() string {
	return p.Service + "_" + p.Metric
}

// Identity distinguishes one anomaly occurrence from another; the stream
// notifier dedups on it.
func (p AnomalyPrediction) Identity() string {
	return fmt.Sprintf("%s|%s|%d", p.Service, p.Metric, p.Timestamp.UnixNano())
}
