package llm

import (
	"sync"
	"time"
)

// CooldownRegistry tracks models that recently failed with a transient
// error so the router skips them until the cooldown lapses. It is safe
// for concurrent use and is injected into the router rather than held
// as package state, so tests can run isolated registries in parallel.
type CooldownRegistry struct {
	mu       sync.Mutex
	until    map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewCooldownRegistry creates a registry with the given cooldown
// duration per marked model.
func NewCooldownRegistry(cooldown time.Duration) *CooldownRegistry {
	return &CooldownRegistry{
		until:    make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Mark puts the model on cooldown starting now.
func (r *CooldownRegistry) Mark(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.until[model] = r.now().Add(r.cooldown)
}

// OnCooldown reports whether the model is still cooling down. Expired
// entries are removed on read.
func (r *CooldownRegistry) OnCooldown(model string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline, ok := r.until[model]
	if !ok {
		return false
	}
	if r.now().After(deadline) {
		delete(r.until, model)
		return false
	}
	return true
}

// Remaining returns how long the model stays on cooldown, or zero if it
// is available.
func (r *CooldownRegistry) Remaining(model string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline, ok := r.until[model]
	if !ok {
		return 0
	}
	left := deadline.Sub(r.now())
	if left < 0 {
		return 0
	}
	return left
}
