package queries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sentinelops/sentinel/pkg/models"
)

type ActionRepository struct {
	db *sql.DB
}

func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) Insert(ctx context.Context, action models.RemediationAction) error {
	query := `
		INSERT INTO remediation_actions (
			action_id, policy_name, service, action,
			reason, status, details, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (action_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.PolicyName,
		action.Service,
		string(action.Action),
		action.Reason,
		string(action.Status),
		action.Details,
		action.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert remediation action: %w", err)
	}
	return nil
}

func (r *ActionRepository) Recent(ctx context.Context, limit int) ([]models.RemediationAction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT action_id, policy_name, service, action,
		       reason, status, details, executed_at
		FROM remediation_actions
		ORDER BY executed_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query remediation actions: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

func (r *ActionRepository) RecentForService(ctx context.Context, service string, limit int) ([]models.RemediationAction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT action_id, policy_name, service, action,
		       reason, status, details, executed_at
		FROM remediation_actions
		WHERE service = $1
		ORDER BY executed_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, service, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query remediation actions: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

func scanActions(rows *sql.Rows) ([]models.RemediationAction, error) {
	var actions []models.RemediationAction
	for rows.Next() {
		var action models.RemediationAction
		var actionType, status string
		var details sql.NullString
		if err := rows.Scan(
			&action.ID,
			&action.PolicyName,
			&action.Service,
			&actionType,
			&action.Reason,
			&status,
			&details,
			&action.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan remediation action: %w", err)
		}
		action.Action = models.ActionType(actionType)
		action.Status = models.ActionStatus(status)
		action.Details = details.String
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
