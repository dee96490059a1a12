package upstream

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 15 * time.Minute

// Throttle bounds outbound query rates per registry endpoint so the proxy
// cannot hammer a registry however fast clients arrive. Limiters are cached
// per key; idle entries are pruned by the maintenance cleaner.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewThrottle builds a per-key token bucket allowing rps sustained queries
// with the given burst headroom.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}

	return &Throttle{
		entries: make(map[string]*throttleEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
	}
}

// Wait blocks until the key's limiter grants a slot or the context expires.
func (t *Throttle) Wait(ctx context.Context, key string) error {
	return t.limiter(key).Wait(ctx)
}

// Allow reports without blocking whether the key's limiter has a free slot.
func (t *Throttle) Allow(key string) bool {
	return t.limiter(key).Allow()
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if ent, ok := t.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(t.rps, t.burst)
	t.entries[key] = &throttleEntry{lim: lim, lastSeen: now}
	return lim
}

// PruneIdle drops limiters that have not been used within the idle TTL and
// returns how many were removed.
func (t *Throttle) PruneIdle() int {
	cutoff := time.Now().Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, ent := range t.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// Size reports the number of tracked keys.
func (t *Throttle) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
