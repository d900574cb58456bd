// Package ratelimit enforces minimum spacing between calls to a single
// provider. One limiter is shared by every concurrent caller hitting the
// same provider, across unrelated resolve calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter is a fixed-delay throttle: a call may start no earlier than the
// previous call's start plus the interval. Waiters are released in FIFO
// order (the weighted semaphore queues them first-come first-served) and
// Acquire is cancellable, so a race loser leaves the queue promptly without
// consuming a slot.
type Limiter struct {
	interval time.Duration
	slot     *semaphore.Weighted

	mu   sync.Mutex
	last time.Time
}

// New creates a limiter with the given minimum inter-call interval. A zero
// or negative interval disables throttling.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		slot:     semaphore.NewWeighted(1),
	}
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Acquire blocks until the caller may start its call. Cancelling the context
// releases the waiter immediately; the limiter state is only advanced when a
// slot is actually granted.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.interval <= 0 {
		return ctx.Err()
	}

	if err := l.slot.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.slot.Release(1)

	l.mu.Lock()
	wait := l.interval - time.Since(l.last)
	l.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// Abandon without consuming the slot's turn.
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	l.last = time.Now()
	l.mu.Unlock()
	return nil
}

// Group holds one limiter per provider name, created lazily. It is the only
// structure mutated by overlapping resolve calls for different keys.
type Group struct {
	mu       sync.Mutex
	limiters map[string]*Limiter
}

// NewGroup creates an empty limiter group.
func NewGroup() *Group {
	return &Group{limiters: make(map[string]*Limiter)}
}

// For returns the limiter for a provider, creating it with the given
// interval on first use. The interval of an existing limiter never changes.
func (g *Group) For(name string, interval time.Duration) *Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.limiters[name]; ok {
		return l
	}
	l := New(interval)
	g.limiters[name] = l
	return l
}
