// Package retry wraps a single adapter invocation with bounded retries.
// Only transient failures are retried; permanent failures return
// immediately. Delays grow exponentially with additive jitter so concurrent
// callers do not retry in lockstep.
package retry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/brdata-dev/brlookup/providers"
)

// Observer receives one event per attempt: the 1-based attempt number, the
// attempt's error (nil on success) and its duration.
type Observer func(attempt int, err error, elapsed time.Duration)

// Policy configures retry behavior for one adapter call.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 behave as 1.
	MaxAttempts int

	// Base is the backoff base; the pre-jitter delay after attempt i
	// (0-based) is min(Base<<i, MaxDelay).
	Base time.Duration

	// MaxDelay caps the pre-jitter delay. Zero means uncapped.
	MaxDelay time.Duration

	// OnAttempt, when set, observes every attempt.
	OnAttempt Observer

	// Jitter overrides the jitter source, for deterministic tests. The
	// default draws uniformly from [0, delay/2).
	Jitter func(delay time.Duration) time.Duration

	// Sleep overrides the cancellable wait, for deterministic tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

var jitterMu sync.Mutex

func defaultJitter(delay time.Duration) time.Duration {
	if delay <= 1 {
		return 0
	}
	jitterMu.Lock()
	defer jitterMu.Unlock()
	return time.Duration(rand.Int63n(int64(delay / 2)))
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn until it succeeds, fails permanently, exhausts the attempt
// budget, or the context is done. On exhaustion the last transient failure
// is returned as the terminal error; a context signal during backoff is
// returned as-is so the caller can distinguish cancellation from provider
// failure.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := fn(ctx)
		if p.OnAttempt != nil {
			p.OnAttempt(i+1, err, time.Since(start))
		}
		if err == nil {
			return nil
		}
		last = err

		if !providers.IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		if err := p.sleep(ctx, p.Delay(i)); err != nil {
			return err
		}
	}
	return last
}

// Delay computes the post-jitter delay after the i-th (0-based) failed
// attempt: min(Base<<i, MaxDelay) plus jitter in [0, delay/2).
func (p Policy) Delay(i int) time.Duration {
	d := p.Base
	if d <= 0 {
		return 0
	}
	for n := 0; n < i; n++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}

	jitter := p.Jitter
	if jitter == nil {
		jitter = defaultJitter
	}
	return d + jitter(d)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return defaultSleep(ctx, d)
}
