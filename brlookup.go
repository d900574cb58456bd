package brlookup

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brdata-dev/brlookup/cache"
	"github.com/brdata-dev/brlookup/config"
	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/metrics"
	"github.com/brdata-dev/brlookup/providers"
	"github.com/brdata-dev/brlookup/providers/brasilapi"
	"github.com/brdata-dev/brlookup/providers/cnpja"
	"github.com/brdata-dev/brlookup/providers/cnpjws"
	"github.com/brdata-dev/brlookup/providers/opencnpj"
	"github.com/brdata-dev/brlookup/providers/viacep"
	"github.com/brdata-dev/brlookup/providers/widenet"
	"github.com/brdata-dev/brlookup/race"
)

// Client is the high-level entry point: a configured registry, the race
// orchestrator and an optional result cache behind one façade.
type Client struct {
	cfg      *config.Config
	registry *providers.Registry
	orch     *race.Orchestrator
	cache    *cache.Cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
	clock      providers.Clock
	userAgent  string
	metrics    *metrics.Metrics
	registry   *providers.Registry
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the event logger. By default the client builds a
// production zap logger at the configured level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient shares one HTTP client across every default adapter.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock overrides the provenance timestamp source.
func WithClock(clock providers.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithUserAgent overrides the User-Agent sent by the default adapters.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRegistry replaces the default provider set entirely.
func WithRegistry(r *providers.Registry) Option {
	return func(o *options) { o.registry = r }
}

// New creates a Client. A nil cfg uses config.Default; use config.New to
// load from the environment instead.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = buildLogger(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
	}

	registry := o.registry
	if registry == nil {
		var err error
		registry, err = DefaultRegistry(providers.Config{
			HTTPClient: o.httpClient,
			Clock:      o.clock,
			UserAgent:  o.userAgent,
		})
		if err != nil {
			return nil, err
		}
	}

	raceOpts := []race.Option{race.WithLogger(logger)}
	if o.metrics != nil {
		raceOpts = append(raceOpts, race.WithMetrics(o.metrics))
	}
	orch := race.New(registry, race.Config{
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		RetryBase:      cfg.RetryBase,
		MaxRetryDelay:  cfg.MaxRetryDelay,
		RateLimitDelay: cfg.RateLimitDelay,
	}, raceOpts...)

	client := &Client{
		cfg:      cfg,
		registry: registry,
		orch:     orch,
		logger:   logger,
		metrics:  o.metrics,
	}
	if cfg.CacheEnabled {
		c, err := cache.New(cfg.CacheCapacity, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		client.cache = c
	}
	return client, nil
}

// DefaultRegistry builds the registry of public Brazilian data providers.
// The shared providers.Config is applied to every adapter; zero fields keep
// each adapter's own defaults.
func DefaultRegistry(pcfg providers.Config) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	entries := []struct {
		provider providers.Provider
		desc     providers.Descriptor
	}{
		{viacep.New(pcfg), providers.Descriptor{}},
		{brasilapi.NewPostal(pcfg), providers.Descriptor{}},
		{widenet.New(pcfg), providers.Descriptor{}},
		{brasilapi.NewCompany(pcfg), providers.Descriptor{}},
		{cnpja.New(pcfg), providers.Descriptor{RateInterval: cnpja.DefaultRateInterval}},
		{opencnpj.New(pcfg), providers.Descriptor{}},
		{cnpjws.New(pcfg), providers.Descriptor{RateInterval: cnpjws.DefaultRateInterval}},
	}
	for _, e := range entries {
		if err := registry.Register(e.provider, e.desc); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Lookup races adapters for an already-validated key. An empty names list
// races every registered adapter of the key's kind. Cached winners are
// returned without dispatching.
func (c *Client) Lookup(ctx context.Context, key providers.Key, names ...string) (*race.Outcome, error) {
	if len(names) == 0 {
		names = c.registry.NamesForKind(key.Kind())
	}

	if c.cache != nil {
		outcome, cached, err := c.cache.GetOrResolve(ctx, c.orch, key, names, 0)
		if err != nil {
			return nil, err
		}
		c.metrics.ObserveCache(cached)
		if cached {
			c.logger.Debug("cache hit",
				zap.String("key", key.String()),
				zap.String("source", outcome.Source))
		}
		return outcome, nil
	}
	return c.orch.Resolve(ctx, key, names, 0)
}

// Address resolves a Brazilian postal code (CEP) to a normalized address.
// The input may be digits only or the dashed XXXXX-XXX form.
func (c *Client) Address(ctx context.Context, cep string, names ...string) (*entity.Address, error) {
	key, err := providers.AddressKey(cep)
	if err != nil {
		return nil, err
	}
	outcome, err := c.Lookup(ctx, key, names...)
	if err != nil {
		return nil, err
	}
	addr, ok := outcome.Entity.(*entity.Address)
	if !ok {
		return nil, fmt.Errorf("winner %s returned a %s entity for an address lookup", outcome.Source, outcome.Entity.Kind())
	}
	return addr, nil
}

// Company resolves a Brazilian company id (CNPJ) to a normalized
// registration. The input may be digits only or the punctuated form; check
// digits are validated before any network call.
func (c *Client) Company(ctx context.Context, cnpj string, names ...string) (*entity.Company, error) {
	key, err := providers.CompanyKey(cnpj)
	if err != nil {
		return nil, err
	}
	outcome, err := c.Lookup(ctx, key, names...)
	if err != nil {
		return nil, err
	}
	company, ok := outcome.Entity.(*entity.Company)
	if !ok {
		return nil, fmt.Errorf("winner %s returned a %s entity for a company lookup", outcome.Source, outcome.Entity.Kind())
	}
	return company, nil
}

// HealthCheck probes every registered provider concurrently and reports
// reachability by name. Probes share the caller's deadline.
func (c *Client) HealthCheck(ctx context.Context) map[string]bool {
	names := c.registry.Names()
	health := make(map[string]bool, len(names))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		reg, err := c.registry.Resolve(name)
		if err != nil {
			continue
		}
		g.Go(func() error {
			ok := reg.Provider.Healthy(gctx)
			mu.Lock()
			health[name] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return health
}

// Providers returns the registered adapter names in registration order.
func (c *Client) Providers() []string { return c.registry.Names() }

// CacheStats returns cumulative cache hits and misses. Both are zero when
// the cache is disabled.
func (c *Client) CacheStats() (hits, misses uint64) {
	if c.cache == nil {
		return 0, 0
	}
	return c.cache.Stats()
}

// PurgeCache drops every cached outcome.
func (c *Client) PurgeCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
