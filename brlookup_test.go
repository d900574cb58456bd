package brlookup

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brdata-dev/brlookup/config"
	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/metrics"
	"github.com/brdata-dev/brlookup/providers"
)

type stubAdapter struct {
	name  string
	kind  entity.Kind
	calls atomic.Int64
}

func (s *stubAdapter) Name() string      { return s.name }
func (s *stubAdapter) Kind() entity.Kind { return s.kind }

func (s *stubAdapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	s.calls.Add(1)
	if s.kind == entity.KindCompany {
		c := &entity.Company{CNPJ: key.String(), LegalName: "EMPRESA TESTE LTDA"}
		return providers.FinishCompany(c, key, s.name, nil)
	}
	addr := &entity.Address{PostalCode: key.String(), City: "São Paulo", State: "SP"}
	return providers.FinishAddress(addr, key, s.name, nil)
}

func (s *stubAdapter) Healthy(ctx context.Context) bool { return true }

func newStubClient(t *testing.T, adapters ...*stubAdapter) *Client {
	t.Helper()
	registry := providers.NewRegistry()
	for _, a := range adapters {
		require.NoError(t, registry.Register(a, providers.Descriptor{}))
	}
	client, err := New(config.Default(), WithRegistry(registry), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return client
}

func TestClient_Address(t *testing.T) {
	stub := &stubAdapter{name: "stub-cep", kind: entity.KindAddress}
	client := newStubClient(t, stub)

	addr, err := client.Address(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, "01001-000", addr.PostalCode)
	assert.Equal(t, "stub-cep", addr.VerificationSource)
	assert.Equal(t, entity.Brazil(), addr.Country)
}

func TestClient_Company(t *testing.T) {
	stub := &stubAdapter{name: "stub-cnpj", kind: entity.KindCompany}
	client := newStubClient(t, stub)

	company, err := client.Company(context.Background(), "11.222.333/0001-81")
	require.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-81", company.CNPJ)
	assert.Equal(t, "EMPRESA TESTE LTDA", company.LegalName)
}

func TestClient_InvalidInputFailsBeforeDispatch(t *testing.T) {
	stub := &stubAdapter{name: "stub-cnpj", kind: entity.KindCompany}
	client := newStubClient(t, stub)

	_, err := client.Company(context.Background(), "11.222.333/0001-99")
	require.Error(t, err)
	assert.Zero(t, stub.calls.Load(), "bad check digits must not reach the network")
}

func TestClient_CachesWinners(t *testing.T) {
	stub := &stubAdapter{name: "stub-cep", kind: entity.KindAddress}
	client := newStubClient(t, stub)

	_, err := client.Address(context.Background(), "01001000")
	require.NoError(t, err)
	_, err = client.Address(context.Background(), "01001000")
	require.NoError(t, err)

	assert.EqualValues(t, 1, stub.calls.Load(), "second resolve must be served from cache")
	hits, misses := client.CacheStats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)

	client.PurgeCache()
	_, err = client.Address(context.Background(), "01001000")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stub.calls.Load())
}

func TestClient_CacheCountersExported(t *testing.T) {
	stub := &stubAdapter{name: "stub-cep", kind: entity.KindAddress}
	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(stub, providers.Descriptor{}))

	reg := prometheus.NewRegistry()
	client, err := New(config.Default(),
		WithRegistry(registry),
		WithLogger(zap.NewNop()),
		WithMetrics(metrics.New(reg)))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := client.Address(context.Background(), "01001000")
		require.NoError(t, err)
	}

	// The exported collectors must agree with the cache's own counters.
	hits, misses := client.CacheStats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
	assert.Equal(t, 1.0, counterValue(t, reg, "brlookup_cache_hits_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "brlookup_cache_misses_total"))
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestClient_CacheDisabled(t *testing.T) {
	stub := &stubAdapter{name: "stub-cep", kind: entity.KindAddress}
	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(stub, providers.Descriptor{}))

	cfg := config.Default()
	cfg.CacheEnabled = false
	client, err := New(cfg, WithRegistry(registry), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := client.Address(context.Background(), "01001000")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, stub.calls.Load())
}

func TestClient_HealthCheck(t *testing.T) {
	cep := &stubAdapter{name: "stub-cep", kind: entity.KindAddress}
	cnpj := &stubAdapter{name: "stub-cnpj", kind: entity.KindCompany}
	client := newStubClient(t, cep, cnpj)

	health := client.HealthCheck(context.Background())
	assert.Equal(t, map[string]bool{"stub-cep": true, "stub-cnpj": true}, health)
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := DefaultRegistry(providers.Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"viacep", "brasilapi-cep", "widenet"},
		registry.NamesForKind(entity.KindAddress))
	assert.Equal(t, []string{"brasilapi-cnpj", "cnpja", "opencnpj", "cnpjws"},
		registry.NamesForKind(entity.KindCompany))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Retries = 0
	_, err := New(cfg)
	assert.Error(t, err)
}
