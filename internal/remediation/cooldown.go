package remediation

import (
	"sync"
	"time"

	"github.com/sentinelops/sentinel/pkg/models"
)

// CooldownTracker remembers the last trigger time per policy so a policy
// cannot fire again until its cooldown elapses. Marking happens on execution
// regardless of the action's outcome, so a failing action is not retried in a
// tight loop either.
type CooldownTracker struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Allow reports whether the policy is outside its cooldown window.
func (c *CooldownTracker) Allow(p models.Policy) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.last[p.Name]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= p.Cooldown()
}

// Mark stamps the policy's trigger time.
func (c *CooldownTracker) Mark(policyName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[policyName] = c.now()
}

// Remaining returns how long until the policy may fire again, zero if it may
// fire now.
func (c *CooldownTracker) Remaining(p models.Policy) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.last[p.Name]
	if !ok {
		return 0
	}
	remaining := p.Cooldown() - c.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clear forgets the policy's last trigger, lifting its cooldown.
func (c *CooldownTracker) Clear(policyName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, policyName)
}

func (c *CooldownTracker) Snapshot() map[string]time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]time.Time, len(c.last))
	for name, t := range c.last {
		out[name] = t
	}
	return out
}
