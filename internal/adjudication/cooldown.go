package adjudication

import (
	"sync"
	"time"
)

// CooldownTracker enforces a minimum interval between interruptions
// initiated by the same chair. The check is a pure comparison of the last
// interrupt timestamp against an injected clock, so there are no timers and
// nothing expires implicitly.
type CooldownTracker struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewCooldownTracker creates a tracker with the given cooldown window.
func NewCooldownTracker(cooldown time.Duration) *CooldownTracker {
	return &CooldownTracker{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// CanInterrupt reports whether the chair is currently allowed to interrupt.
// Chairs with no recorded interruption are always eligible.
func (t *CooldownTracker) CanInterrupt(position string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[position]
	if !ok {
		return true
	}
	return t.now().Sub(last) >= t.cooldown
}

// Remaining returns how long until the chair may interrupt again. Zero for
// eligible chairs.
func (t *CooldownTracker) Remaining(position string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[position]
	if !ok {
		return 0
	}
	remaining := t.cooldown - t.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Start records an interruption by the chair, beginning its cooldown.
// Existing entries are updated in place.
func (t *CooldownTracker) Start(position string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[position] = t.now()
}

// Reset clears all cooldown state, e.g. when a new debate starts.
func (t *CooldownTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[string]time.Time)
}
