// Package widenet looks up Brazilian postal codes on the WideNet/ApiCEP
// mirror (https://cdn.apicep.com/).
package widenet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/format"
	"github.com/brdata-dev/brlookup/providers"
)

const (
	// Name is the stable registry name of the adapter.
	Name = "widenet"

	defaultBaseURL = "https://cdn.apicep.com/file/apicep"
	defaultTimeout = 10 * time.Second
)

// Adapter implements providers.Provider for WideNet.
type Adapter struct {
	cfg    providers.Config
	client *http.Client
}

// New creates a WideNet adapter. Zero config fields use the defaults.
func New(cfg providers.Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = providers.DefaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Adapter{cfg: cfg, client: client}
}

// Name returns "widenet".
func (a *Adapter) Name() string { return Name }

// Kind reports the postal code lookup family.
func (a *Adapter) Kind() entity.Kind { return entity.KindAddress }

type payload struct {
	OK       bool   `json:"ok"`
	Status   int    `json:"status"`
	Code     string `json:"code"`
	Address  string `json:"address"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Lookup fetches and normalizes one postal code. WideNet expects the dashed
// XXXXX-XXX form in the path and flags unknown codes inside a 200 body.
func (a *Adapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindAddress {
		return nil, providers.Permanent(Name, providers.CodeWrongKind, "widenet only serves postal code lookups", nil)
	}

	dashed, err := format.FormatCEP(key.String())
	if err != nil {
		return nil, providers.Permanent(Name, providers.CodeBadRequest, "key is not a valid CEP", err)
	}

	url := fmt.Sprintf("%s/%s.json", a.cfg.BaseURL, dashed)
	var p payload
	if err := providers.GetJSON(ctx, a.client, Name, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	if !p.OK || p.Status != http.StatusOK {
		return nil, providers.NotFound(Name, key.String())
	}

	addr := &entity.Address{
		PostalCode:   p.Code,
		Street:       p.Address,
		Neighborhood: p.District,
		City:         p.City,
		State:        p.State,
	}
	return providers.FinishAddress(addr, key, Name, a.cfg.Clock)
}

// Healthy probes a well-known postal code.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/01001-000.json", a.cfg.BaseURL), a.cfg.UserAgent)
}
