package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cooldownIdle  = 10 * time.Minute
	sweepInterval = 256
)

type cooldownEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Cooldowns admits at most one invocation per key every period.
type Cooldowns struct {
	mu      sync.Mutex
	entries map[string]*cooldownEntry
	admits  int
	now     func() time.Time
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		entries: map[string]*cooldownEntry{},
		now:     time.Now,
	}
}

// Admit returns 0 when key may run now, or how long it has to wait. A
// rejected attempt doesn't push the window further.
func (c *Cooldowns) Admit(key string, period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.admits++
	if c.admits%sweepInterval == 0 {
		c.sweep(now)
	}

	e, ok := c.entries[key]
	if !ok {
		e = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(period), 1)}
		c.entries[key] = e
	}
	e.seen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return period
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait
	}
	return 0
}

func (c *Cooldowns) sweep(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.seen) > cooldownIdle {
			delete(c.entries, k)
		}
	}
}

func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
