package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/providers"
	"github.com/brdata-dev/brlookup/race"
)

type stubResolver struct {
	calls   int
	outcome *race.Outcome
	err     error
}

func (s *stubResolver) Resolve(ctx context.Context, key providers.Key, names []string, timeout time.Duration) (*race.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func wonOutcome(key providers.Key, source string) *race.Outcome {
	addr := &entity.Address{PostalCode: key.String()}
	addr.Stamp(source, time.Now())
	return &race.Outcome{Entity: addr, Source: source, Elapsed: 10 * time.Millisecond}
}

func addressKey(t *testing.T, raw string) providers.Key {
	t.Helper()
	key, err := providers.AddressKey(raw)
	require.NoError(t, err)
	return key
}

func TestCache_GetOrResolve(t *testing.T) {
	c, err := New(8, 0)
	require.NoError(t, err)

	key := addressKey(t, "88304-053")
	names := []string{"viacep", "brasilapi"}
	resolver := &stubResolver{outcome: wonOutcome(key, "viacep")}

	outcome, cached, err := c.GetOrResolve(context.Background(), resolver, key, names, time.Second)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "viacep", outcome.Source)
	assert.Equal(t, 1, resolver.calls)

	// Second call hits the cache without dispatching.
	outcome, cached, err = c.GetOrResolve(context.Background(), resolver, key, names, time.Second)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "viacep", outcome.Source)
	assert.Equal(t, 1, resolver.calls)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_AdapterSetOrderIrrelevant(t *testing.T) {
	c, err := New(8, 0)
	require.NoError(t, err)

	key := addressKey(t, "88304-053")
	c.Put(key, []string{"b", "a"}, wonOutcome(key, "a"))

	_, ok := c.Get(key, []string{"a", "b"})
	assert.True(t, ok, "candidate set is compared order-insensitively")

	_, ok = c.Get(key, []string{"a"})
	assert.False(t, ok, "a different candidate set is a different entry")
}

func TestCache_FailuresNotStored(t *testing.T) {
	c, err := New(8, 0)
	require.NoError(t, err)

	key := addressKey(t, "88304-053")
	resolver := &stubResolver{err: &race.AllFailedError{Key: key.String()}}

	_, _, err = c.GetOrResolve(context.Background(), resolver, key, []string{"viacep"}, time.Second)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	// Next call dispatches again; the failure may have been transient.
	_, _, err = c.GetOrResolve(context.Background(), resolver, key, []string{"viacep"}, time.Second)
	require.Error(t, err)
	assert.Equal(t, 2, resolver.calls)
}

func TestCache_LRUEviction(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Capacity())

	k1 := addressKey(t, "88304-053")
	k2 := addressKey(t, "01001-000")
	k3 := addressKey(t, "20040-020")
	names := []string{"viacep"}

	c.Put(k1, names, wonOutcome(k1, "viacep"))
	c.Put(k2, names, wonOutcome(k2, "viacep"))

	// Touch k1 so k2 becomes least recently used.
	_, ok := c.Get(k1, names)
	require.True(t, ok)

	c.Put(k3, names, wonOutcome(k3, "viacep"))
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get(k1, names)
	assert.True(t, ok)
	_, ok = c.Get(k2, names)
	assert.False(t, ok, "least recently used entry must be evicted")
	_, ok = c.Get(k3, names)
	assert.True(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, err := New(8, 20*time.Millisecond)
	require.NoError(t, err)

	key := addressKey(t, "88304-053")
	names := []string{"viacep"}
	c.Put(key, names, wonOutcome(key, "viacep"))

	_, ok := c.Get(key, names)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get(key, names)
	assert.False(t, ok, "expired entries must miss")
	assert.Equal(t, 0, c.Len(), "expired entries are removed on access")
}

func TestCache_InvalidCapacity(t *testing.T) {
	_, err := New(0, 0)
	assert.Error(t, err)
	_, err = New(-1, 0)
	assert.Error(t, err)
}

func TestCache_Purge(t *testing.T) {
	c, err := New(4, 0)
	require.NoError(t, err)

	key := addressKey(t, "88304-053")
	c.Put(key, []string{"viacep"}, wonOutcome(key, "viacep"))
	require.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
