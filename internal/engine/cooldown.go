package engine

import (
	"sync"
	"time"
)

// CooldownGate enforces the per-user minimum interval between opens.
// State lives in process memory only: a restart clears all stamps,
// which is acceptable for an anti-spam measure.
type CooldownGate struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewCooldownGate creates a gate with the given minimum interval.
func NewCooldownGate(cooldown time.Duration) *CooldownGate {
	return &CooldownGate{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Remaining returns how long the user must still wait, or zero.
func (g *CooldownGate) Remaining(userID string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.last[userID]
	if !ok {
		return 0
	}
	remaining := g.cooldown - g.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stamp records the current time as the user's last open.
func (g *CooldownGate) Stamp(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[userID] = g.now()
}

// Clear removes the user's stamp, re-arming the gate immediately.
// Used when a failed open is compensated.
func (g *CooldownGate) Clear(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, userID)
}
