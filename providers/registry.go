package providers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brdata-dev/brlookup/entity"
)

var (
	// ErrDuplicateProvider is returned when registering a name that already
	// exists. Registration rejects by default; there is no overwrite.
	ErrDuplicateProvider = errors.New("provider already registered")

	// ErrUnknownProvider is returned when resolving a name that was never
	// registered.
	ErrUnknownProvider = errors.New("provider not registered")
)

// Descriptor is the immutable metadata paired with an adapter at
// registration time. It is owned by the registry.
type Descriptor struct {
	// Name is the unique registry key. Defaults to the adapter's Name().
	Name string

	// Kind is the lookup family the adapter serves.
	Kind entity.Kind

	// Timeout bounds a single call to the adapter. Zero means the race
	// deadline alone applies.
	Timeout time.Duration

	// RateInterval is the minimum spacing between calls to the provider.
	// Zero means unthrottled.
	RateInterval time.Duration
}

// Registration pairs a provider with its descriptor and registration index.
// The index gives races a deterministic tie-break for simultaneous
// successes.
type Registration struct {
	Provider   Provider
	Descriptor Descriptor
	Index      int
}

// Registry maps provider names to configured adapters. It is safe for
// concurrent use and effectively immutable once startup registration is
// done.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
	order   []string
}

// NewRegistry creates an empty registry. Registries are constructed
// explicitly and passed by reference; there is no process-wide default.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register adds an adapter under d.Name (or the adapter's own name when
// empty). A duplicate name fails with ErrDuplicateProvider.
func (r *Registry) Register(p Provider, d Descriptor) error {
	if p == nil {
		return errors.New("provider cannot be nil")
	}
	if d.Name == "" {
		d.Name = p.Name()
	}
	if d.Name == "" {
		return errors.New("provider name cannot be empty")
	}
	if d.Kind == "" {
		d.Kind = p.Kind()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, d.Name)
	}

	r.entries[d.Name] = &Registration{
		Provider:   p,
		Descriptor: d,
		Index:      len(r.order),
	}
	r.order = append(r.order, d.Name)
	return nil
}

// Resolve returns the registration for a name.
func (r *Registry) Resolve(name string) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return reg, nil
}

// ResolveMany resolves names preserving caller order. Any unknown name fails
// the whole call; nothing is silently skipped.
func (r *Registry) ResolveMany(names []string) ([]*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*Registration, 0, len(names))
	for _, name := range names {
		reg, exists := r.entries[name]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// NamesForKind returns registered names serving one lookup family, in
// registration order.
func (r *Registry) NamesForKind(kind entity.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		if r.entries[name].Descriptor.Kind == kind {
			names = append(names, name)
		}
	}
	return names
}

// Descriptors returns every registered descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descs = append(descs, r.entries[name].Descriptor)
	}
	return descs
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
