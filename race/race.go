// Package race implements the first-to-respond orchestrator: it dispatches a
// lookup to several provider adapters concurrently, returns the first
// normalized success and cancels the rest.
package race

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/metrics"
	"github.com/brdata-dev/brlookup/providers"
	"github.com/brdata-dev/brlookup/ratelimit"
	"github.com/brdata-dev/brlookup/retry"
)

// ErrNoProviders is returned when a resolve is attempted with an empty
// candidate set.
var ErrNoProviders = errors.New("no providers to race")

// Config tunes the race and the per-adapter wrappers.
type Config struct {
	// Timeout is the overall resolve deadline used when the caller passes
	// zero.
	Timeout time.Duration

	// Retries is the attempt budget per adapter, including the first call.
	Retries int

	// RetryBase is the backoff base delay.
	RetryBase time.Duration

	// MaxRetryDelay caps the pre-jitter backoff delay.
	MaxRetryDelay time.Duration

	// RateLimitDelay is the minimum inter-call spacing applied to adapters
	// whose descriptor does not set one.
	RateLimitDelay time.Duration
}

// DefaultConfig returns the defaults used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		Timeout:       10 * time.Second,
		Retries:       3,
		RetryBase:     200 * time.Millisecond,
		MaxRetryDelay: 10 * time.Second,
	}
}

// Outcome is a won race.
type Outcome struct {
	// Entity is the winning canonical record.
	Entity entity.Entity

	// Source is the name of the adapter that won.
	Source string

	// Attempts counts the winner's calls, including retries.
	Attempts int

	// Elapsed is the end-to-end resolve duration.
	Elapsed time.Duration

	// ResolveID correlates the outcome with per-attempt log events.
	ResolveID string

	// Losers holds the terminal result of every non-winning adapter,
	// including those cancelled when the winner was declared.
	Losers []providers.Result
}

// AllFailedError is returned when every adapter failed before any success.
// It carries one result per adapter so callers can distinguish confirmed
// absence from transient trouble.
type AllFailedError struct {
	Key     string
	Results []providers.Result
}

// Error summarizes every adapter's failure.
func (e *AllFailedError) Error() string {
	parts := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		parts = append(parts, fmt.Sprintf("%s: %v", r.Provider, r.Err))
	}
	return fmt.Sprintf("all %d providers failed for %s: %s", len(e.Results), e.Key, strings.Join(parts, "; "))
}

// Unwrap exposes the per-adapter failures for errors.Is/As.
func (e *AllFailedError) Unwrap() error {
	errs := make([]error, 0, len(e.Results))
	for _, r := range e.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return multierr.Combine(errs...)
}

// OnlyNotFound reports whether every adapter confirmed absence, meaning the
// record genuinely does not exist rather than being temporarily unreachable.
func (e *AllFailedError) OnlyNotFound() bool {
	for _, r := range e.Results {
		if !providers.IsNotFound(r.Err) {
			return false
		}
	}
	return len(e.Results) > 0
}

// Orchestrator races registry-resolved adapters for one lookup key.
type Orchestrator struct {
	registry *providers.Registry
	limiters *ratelimit.Group
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the event logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLimiterGroup shares an existing limiter group, so several
// orchestrators throttle the same providers together.
func WithLimiterGroup(g *ratelimit.Group) Option {
	return func(o *Orchestrator) { o.limiters = g }
}

// New creates an orchestrator over the given registry. Zero config fields
// fall back to DefaultConfig values.
func New(registry *providers.Registry, cfg Config, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = def.RetryBase
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = def.MaxRetryDelay
	}

	o := &Orchestrator{
		registry: registry,
		limiters: ratelimit.NewGroup(),
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type indexedResult struct {
	index  int
	result providers.Result
}

// Resolve races the named adapters for the key. It returns the first
// normalized success as an Outcome, cancelling the remaining adapters, or an
// *AllFailedError when every adapter terminally failed. Adapters still in
// flight when the deadline fires are reported as timeout failures. A zero
// timeout uses the configured default.
func (o *Orchestrator) Resolve(ctx context.Context, key providers.Key, names []string, timeout time.Duration) (*Outcome, error) {
	if key.IsZero() {
		return nil, errors.New("lookup key is empty")
	}

	// Fail fast before any dispatch when a name is unknown.
	regs, err := o.registry.ResolveMany(names)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, ErrNoProviders
	}

	if timeout <= 0 {
		timeout = o.cfg.Timeout
	}

	resolveID := uuid.NewString()
	start := time.Now()
	o.logger.Debug("resolve started",
		zap.String("resolve_id", resolveID),
		zap.String("key", key.String()),
		zap.String("kind", string(key.Kind())),
		zap.Strings("providers", names),
		zap.Duration("timeout", timeout))

	raceCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan indexedResult, len(regs))
	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Add(1)
		go func(i int, reg *providers.Registration) {
			defer wg.Done()
			resultCh <- indexedResult{i, o.runAdapter(raceCtx, resolveID, key, reg)}
		}(i, reg)
	}

	results := make([]providers.Result, len(regs))
	winner := -1
	received := 0
	for received < len(regs) {
		ir := <-resultCh
		received++
		results[ir.index] = ir.result

		if !ir.result.Succeeded() {
			continue
		}
		winner = ir.index
		// Drain successes that are already buffered so simultaneous
		// readiness resolves deterministically: the adapter listed first
		// wins.
		for drained := false; !drained && received < len(regs); {
			select {
			case extra := <-resultCh:
				received++
				results[extra.index] = extra.result
				if extra.result.Succeeded() && extra.index < winner {
					winner = extra.index
				}
			default:
				drained = true
			}
		}
		break
	}

	// Stop the losers and join every task. Each sends exactly one result
	// into the buffered channel, so the drain below always terminates; the
	// adapters honor cancellation at every suspension point, keeping the
	// join latency bounded.
	cancel()
	joined := make(chan struct{})
	go func() { wg.Wait(); close(joined) }()
	<-joined
	for received < len(regs) {
		ir := <-resultCh
		received++
		results[ir.index] = ir.result
		if winner == -1 && ir.result.Succeeded() {
			// Late success that slipped in right at the deadline.
			winner = ir.index
		}
	}

	elapsed := time.Since(start)

	if winner >= 0 {
		win := results[winner]
		losers := make([]providers.Result, 0, len(results)-1)
		for i, r := range results {
			if i != winner {
				losers = append(losers, r)
			}
		}
		o.metrics.ObserveResolve("winner", elapsed)
		o.logger.Info("resolve won",
			zap.String("resolve_id", resolveID),
			zap.String("key", key.String()),
			zap.String("winner", win.Provider),
			zap.Int("attempts", win.Attempts),
			zap.Duration("elapsed", elapsed))
		return &Outcome{
			Entity:    win.Entity,
			Source:    win.Provider,
			Attempts:  win.Attempts,
			Elapsed:   elapsed,
			ResolveID: resolveID,
			Losers:    losers,
		}, nil
	}

	// The caller backing out is not a race failure.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.metrics.ObserveResolve("all_failed", elapsed)
	allFailed := &AllFailedError{Key: key.String(), Results: results}
	o.logger.Warn("resolve failed",
		zap.String("resolve_id", resolveID),
		zap.String("key", key.String()),
		zap.Duration("elapsed", elapsed),
		zap.Error(allFailed))
	return nil, allFailed
}

// runAdapter wraps one adapter with its rate limiter and retry policy and
// produces its terminal result.
func (o *Orchestrator) runAdapter(ctx context.Context, resolveID string, key providers.Key, reg *providers.Registration) providers.Result {
	name := reg.Descriptor.Name
	res := providers.Result{Provider: name}
	start := time.Now()

	interval := reg.Descriptor.RateInterval
	if interval <= 0 {
		interval = o.cfg.RateLimitDelay
	}
	limiter := o.limiters.For(name, interval)

	policy := retry.Policy{
		MaxAttempts: o.cfg.Retries,
		Base:        o.cfg.RetryBase,
		MaxDelay:    o.cfg.MaxRetryDelay,
		OnAttempt: func(attempt int, err error, elapsed time.Duration) {
			res.Attempts = attempt
			outcome := outcomeLabel(err)
			o.metrics.ObserveAttempt(name, outcome)
			o.logger.Debug("adapter attempt",
				zap.String("resolve_id", resolveID),
				zap.String("provider", name),
				zap.Int("attempt", attempt),
				zap.String("outcome", outcome),
				zap.Duration("elapsed", elapsed))
		},
	}

	var won entity.Entity
	err := policy.Do(ctx, func(ctx context.Context) error {
		if err := limiter.Acquire(ctx); err != nil {
			return err
		}

		callCtx := ctx
		if d := reg.Descriptor.Timeout; d > 0 {
			var cancelCall context.CancelFunc
			callCtx, cancelCall = context.WithTimeout(ctx, d)
			defer cancelCall()
		}

		got, err := reg.Provider.Lookup(callCtx, key)
		if err != nil {
			// A per-call deadline while the race is still live is a
			// transient failure, not the end of the race.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return providers.Transient(name, providers.CodeTimeout, "call deadline exceeded", err)
			}
			return err
		}
		won = got
		return nil
	})

	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = terminalErr(name, err)
		return res
	}
	res.Entity = won
	return res
}

// terminalErr maps raw context signals into the failure taxonomy: the race
// deadline becomes a synthetic timeout failure, while plain cancellation (a
// lost race) is kept as-is and never surfaced as an adapter failure.
func terminalErr(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return providers.Timeout(name)
	}
	return err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case providers.IsTransient(err):
		return "transient_failure"
	case providers.IsPermanent(err):
		return "permanent_failure"
	case providers.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
