package queries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sentinelops/sentinel/pkg/models"
)

type AnomalyEventRepository struct {
	db *sql.DB
}

func NewAnomalyEventRepository(db *sql.DB) *AnomalyEventRepository {
	return &AnomalyEventRepository{db: db}
}

func (r *AnomalyEventRepository) Insert(ctx context.Context, pred models.AnomalyPrediction) error {
	query := `
		INSERT INTO anomaly_events (
			service, metric, current_value,
			expected_min, expected_max, expected_mean,
			confidence, severity, detection_method, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		pred.Service,
		pred.Metric,
		pred.CurrentValue,
		pred.ExpectedRange.Min,
		pred.ExpectedRange.Max,
		pred.ExpectedRange.Mean,
		pred.Confidence,
		string(pred.Severity),
		pred.DetectionMethod,
		pred.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert anomaly event: %w", err)
	}
	return nil
}

func (r *AnomalyEventRepository) Recent(ctx context.Context, limit int) ([]models.AnomalyPrediction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT service, metric, current_value,
		       expected_min, expected_max, expected_mean,
		       confidence, severity, detection_method, detected_at
		FROM anomaly_events
		ORDER BY detected_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly events: %w", err)
	}
	defer rows.Close()

	return scanAnomalies(rows)
}

func (r *AnomalyEventRepository) RecentForService(ctx context.Context, service string, limit int) ([]models.AnomalyPrediction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT service, metric, current_value,
		       expected_min, expected_max, expected_mean,
		       confidence, severity, detection_method, detected_at
		FROM anomaly_events
		WHERE service = $1
		ORDER BY detected_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, service, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly events: %w", err)
	}
	defer rows.Close()

	return scanAnomalies(rows)
}

func scanAnomalies(rows *sql.Rows) ([]models.AnomalyPrediction, error) {
	var preds []models.AnomalyPrediction
	for rows.Next() {
		var pred models.AnomalyPrediction
		var severity string
		if err := rows.Scan(
			&pred.Service,
			&pred.Metric,
			&pred.CurrentValue,
			&pred.ExpectedRange.Min,
			&pred.ExpectedRange.Max,
			&pred.ExpectedRange.Mean,
			&pred.Confidence,
			&severity,
			&pred.DetectionMethod,
			&pred.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly event: %w", err)
		}
		pred.Severity = models.Severity(severity)
		pred.IsAnomaly = true
		preds = append(preds, pred)
	}
	return preds, rows.Err()
}
