// Package brasilapi looks up postal codes and company registrations on
// BrasilAPI (https://brasilapi.com.br/).
package brasilapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/providers"
)

const (
	// PostalName is the registry name of the postal code adapter.
	PostalName = "brasilapi-cep"

	defaultBaseURL       = "https://brasilapi.com.br/api"
	defaultPostalTimeout = 10 * time.Second
)

// PostalAdapter implements providers.Provider for the BrasilAPI CEP
// endpoint.
type PostalAdapter struct {
	cfg    providers.Config
	client *http.Client
}

// NewPostal creates a BrasilAPI postal code adapter.
func NewPostal(cfg providers.Config) *PostalAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultPostalTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = providers.DefaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &PostalAdapter{cfg: cfg, client: client}
}

// Name returns "brasilapi-cep".
func (a *PostalAdapter) Name() string { return PostalName }

// Kind reports the postal code lookup family.
func (a *PostalAdapter) Kind() entity.Kind { return entity.KindAddress }

type postalPayload struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Lookup fetches and normalizes one postal code. BrasilAPI answers 404 for
// unknown codes, which FromStatus maps to confirmed absence.
func (a *PostalAdapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindAddress {
		return nil, providers.Permanent(PostalName, providers.CodeWrongKind, "adapter only serves postal code lookups", nil)
	}

	url := fmt.Sprintf("%s/cep/v1/%s", a.cfg.BaseURL, key.String())
	var p postalPayload
	if err := providers.GetJSON(ctx, a.client, PostalName, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	addr := &entity.Address{
		PostalCode:   p.CEP,
		Street:       p.Street,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
	}
	return providers.FinishAddress(addr, key, PostalName, a.cfg.Clock)
}

// Healthy probes a well-known postal code.
func (a *PostalAdapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/cep/v1/01001000", a.cfg.BaseURL), a.cfg.UserAgent)
}
