package policy

import "github.com/sentinelops/sentinel/pkg/models"

// DefaultPolicies is the built-in fallback set used when no policy file can be
// read. It keeps the controller functional out of the box.
func DefaultPolicies() []models.Policy {
	return []models.Policy{
		{
			Name:            "high_latency_restart",
			Service:         "orders",
			Condition:       "latency > 0.5",
			Action:          models.ActionRestartContainer,
			CooldownSeconds: 300,
			Enabled:         true,
		},
		{
			Name:            "high_cpu_alert",
			Service:         "orders",
			Condition:       "cpu_usage > 85",
			Action:          models.ActionAlert,
			CooldownSeconds: 180,
			Enabled:         true,
		},
		{
			Name:            "high_error_rate_restart",
			Service:         "payments",
			Condition:       "error_rate > 0.1",
			Action:          models.ActionRestartContainer,
			CooldownSeconds: 300,
			Enabled:         true,
		},
		{
			Name:            "users_latency_restart",
			Service:         "users",
			Condition:       "latency > 0.5",
			Action:          models.ActionRestartContainer,
			CooldownSeconds: 300,
			Enabled:         true,
		},
	}
}
