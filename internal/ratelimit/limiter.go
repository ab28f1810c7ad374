// Package ratelimit paces outbound provider calls. Jikan enforces a
// low requests-per-second ceiling; exceeding it earns 429s.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces calls at least one interval apart. The first call
// passes immediately. A nil Limiter never blocks.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewRPS allows up to rps calls per second.
func NewRPS(rps int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	return &Limiter{interval: time.Second / time.Duration(rps)}
}

// Wait blocks until the next slot or ctx cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	l.next = now.Add(wait + l.interval)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
