package models

import "time"

type ActionStatus string

const (
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusFailed    ActionStatus = "failed"
)

// RemediationAction records one invocation of the action executor. Immutable
// once recorded; kept in a bounded most-recent-100 log.
type RemediationAction struct {
	ID         string       `json:"action_id"`
	PolicyName string       `json:"policy_name"`
	Service    string       `json:"service"`
	Action     ActionType   `json:"action"`
	Reason     string       `json:"reason"`
	Status     ActionStatus `json:"status"`
	Details    string       `json:"details,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

func (a RemediationAction) Succeeded() bool {
	return a.Status == ActionStatusCompleted
}
