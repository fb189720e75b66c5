package models

import "time"

type ActionType string

const (
	ActionRestartContainer ActionType = "restart_container"
	ActionScaleUp          ActionType = "scale_up"
	ActionAlert            ActionType = "alert"
)

// Policy maps a matched condition on a service's metrics to a remediation
// action. Identity is the name; mutations go through the policy store, which
// persists the full set back to disk.
type Policy struct {
	Name            string     `json:"name" yaml:"name"`
	Service         string     `json:"service" yaml:"service"`
	Condition       string     `json:"condition" yaml:"condition"`
	Action          ActionType `json:"action" yaml:"action"`
	CooldownSeconds int        `json:"cooldown" yaml:"cooldown"`
	Enabled         bool       `json:"enabled" yaml:"enabled"`
}

func (p Policy) Cooldown() time.Duration {
	return time.Duration(p.CooldownSeconds) * time.Second
}
