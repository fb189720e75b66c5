package database

import (
	"context"
	"fmt"
)

// Migrator creates the persistence schema. Statements are idempotent so the
// migrator can run on every startup.
type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS anomaly_events (
		id BIGSERIAL PRIMARY KEY,
		service TEXT NOT NULL,
		metric TEXT NOT NULL,
		current_value DOUBLE PRECISION NOT NULL,
		expected_min DOUBLE PRECISION NOT NULL,
		expected_max DOUBLE PRECISION NOT NULL,
		expected_mean DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		severity TEXT NOT NULL,
		detection_method TEXT NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_anomaly_events_service_time
		ON anomaly_events (service, detected_at DESC)`,
	`CREATE TABLE IF NOT EXISTS remediation_actions (
		id BIGSERIAL PRIMARY KEY,
		action_id TEXT NOT NULL UNIQUE,
		policy_name TEXT NOT NULL,
		service TEXT NOT NULL,
		action TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		details TEXT,
		executed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_remediation_actions_service_time
		ON remediation_actions (service, executed_at DESC)`,
}

func (m *Migrator) Run(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
