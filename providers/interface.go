// Package providers defines the adapter contract shared by all remote data
// providers, the registry that holds configured adapters, the failure
// taxonomy, and the normalization helpers that finish provider payloads into
// canonical entities.
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/format"
)

// Key is a normalized lookup identifier. Only the cleaned form is retained,
// so keys built from differently formatted input compare equal under == and
// hash identically as map keys.
type Key struct {
	kind       entity.Kind
	normalized string
}

// AddressKey builds a postal code lookup key. The raw input may be formatted
// (XXXXX-XXX) or bare digits.
func AddressKey(raw string) (Key, error) {
	clean, err := format.CleanCEP(raw)
	if err != nil {
		return Key{}, err
	}
	return Key{kind: entity.KindAddress, normalized: clean}, nil
}

// CompanyKey builds a CNPJ lookup key. Check digits are validated up front so
// invalid identifiers never reach a provider.
func CompanyKey(raw string) (Key, error) {
	clean, err := format.CleanCNPJ(raw)
	if err != nil {
		return Key{}, err
	}
	return Key{kind: entity.KindCompany, normalized: clean}, nil
}

// Kind reports the lookup family the key belongs to.
func (k Key) Kind() entity.Kind { return k.kind }

// String returns the normalized, digits-only form.
func (k Key) String() string { return k.normalized }

// IsZero reports whether the key was never built through a constructor.
func (k Key) IsZero() bool { return k.normalized == "" }

// Clock supplies normalization timestamps. All provenance stamps within one
// process should share a single clock reference.
type Clock func() time.Time

// Provider is the contract every adapter implements. An adapter performs
// exactly one remote call per Lookup invocation and returns either a
// canonical entity or a typed failure. Adapters must be read-only on the
// remote system so cancelling an in-flight call never corrupts external
// state.
type Provider interface {
	// Name returns the unique, stable provider name (e.g. "viacep").
	Name() string

	// Kind reports which lookup family the adapter serves.
	Kind() entity.Kind

	// Lookup performs one call and normalizes the response. The context
	// must be honored at every suspension point.
	Lookup(ctx context.Context, key Key) (entity.Entity, error)

	// Healthy probes provider availability. Best effort; never retried.
	Healthy(ctx context.Context) bool
}

// Config holds common adapter configuration. Zero values fall back to each
// adapter's defaults.
type Config struct {
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds a single HTTP call when no custom client is given.
	Timeout time.Duration

	// UserAgent sent on every request.
	UserAgent string

	// HTTPClient is the injected transport. When nil a client with Timeout
	// is constructed.
	HTTPClient *http.Client

	// Clock supplies provenance timestamps. Defaults to time.Now.
	Clock Clock
}

// DefaultUserAgent identifies the library to provider APIs.
const DefaultUserAgent = "brlookup/1.0"

// Result is the terminal outcome of one adapter's participation in a race:
// either a canonical entity or the failure that ended its attempts.
type Result struct {
	// Provider is the adapter name.
	Provider string

	// Entity is set on success.
	Entity entity.Entity

	// Err is set on failure; a *Failure for anything a provider produced.
	Err error

	// Attempts counts calls actually made, including retries.
	Attempts int

	// Elapsed covers limiter wait, all attempts and backoff sleeps.
	Elapsed time.Duration
}

// Succeeded reports whether the adapter produced an entity.
func (r Result) Succeeded() bool { return r.Err == nil && r.Entity != nil }
