package detector

import "github.com/sentinelops/sentinel/pkg/models"

// ClassifySeverity buckets a verdict's confidence into a severity tier.
func ClassifySeverity(isAnomaly bool, confidence float64) models.Severity {
	switch {
	case !isAnomaly:
		return models.SeverityNormal
	case confidence > 0.8:
		return models.SeverityCritical
	case confidence > 0.6:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

func expectedRange(mean, sd, sensitivity float64) models.ExpectedRange {
	return models.ExpectedRange{
		Min:  mean - sensitivity*sd,
		Max:  mean + sensitivity*sd,
		Mean: mean,
	}
}
