// Package viacep looks up Brazilian postal codes on the ViaCEP API
// (https://viacep.com.br/).
package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/providers"
)

const (
	// Name is the stable registry name of the adapter.
	Name = "viacep"

	defaultBaseURL = "https://viacep.com.br/ws"
	defaultTimeout = 10 * time.Second

	// DefaultRateInterval is zero: ViaCEP publishes no rate limit.
	DefaultRateInterval = 0
)

// Adapter implements providers.Provider for ViaCEP.
type Adapter struct {
	cfg    providers.Config
	client *http.Client
}

// New creates a ViaCEP adapter. Zero config fields use the defaults.
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

// Name returns "viacep".
func (a *Adapter) Name() string { return Name }

// Kind reports the postal code lookup family.
func (a *Adapter) Kind() entity.Kind { return entity.KindAddress }

// payload is the ViaCEP response shape. "erro" arrives as a bool or the
// string "true" depending on the API version, so it is kept raw.
type payload struct {
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
	IBGE        string          `json:"ibge"`
	DDD         string          `json:"ddd"`
	Erro        json.RawMessage `json:"erro"`
}

// Lookup fetches and normalizes one postal code.
func (a *Adapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindAddress {
		return nil, providers.Permanent(Name, providers.CodeWrongKind, "viacep only serves postal code lookups", nil)
	}

	url := fmt.Sprintf("%s/%s/json/", a.cfg.BaseURL, key.String())
	var p payload
	if err := providers.GetJSON(ctx, a.client, Name, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	// ViaCEP answers 200 with an error marker for unknown codes.
	if p.notFound() {
		return nil, providers.NotFound(Name, key.String())
	}

	addr := &entity.Address{
		PostalCode:   p.CEP,
		Street:       p.Logradouro,
		Unit:         p.Complemento,
		Neighborhood: p.Bairro,
		City:         p.Localidade,
		State:        p.UF,
		IBGECode:     p.IBGE,
		AreaCode:     p.DDD,
	}
	return providers.FinishAddress(addr, key, Name, a.cfg.Clock)
}

func (p payload) notFound() bool {
	if len(p.Erro) == 0 {
		return false
	}
	v := bytes.Trim(p.Erro, `"`)
	return !bytes.Equal(v, []byte("false")) && !bytes.Equal(v, []byte("null"))
}

// Healthy probes a well-known postal code.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/01001000/json/", a.cfg.BaseURL), a.cfg.UserAgent)
}
