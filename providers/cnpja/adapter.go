// Package cnpja looks up company registrations on the open CNPJá endpoint
// (https://open.cnpja.com/). The free tier allows roughly one request every
// two seconds, so registrations should carry DefaultRateInterval.
package cnpja

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/providers"
)

const (
	// Name is the stable registry name of the adapter.
	Name = "cnpja"

	// DefaultRateInterval spaces requests to stay inside the free tier.
	DefaultRateInterval = 2 * time.Second

	defaultBaseURL = "https://open.cnpja.com"
	defaultTimeout = 30 * time.Second
)

// Adapter implements providers.Provider for CNPJá.
type Adapter struct {
	cfg    providers.Config
	client *http.Client
}

// New creates a CNPJá adapter. Zero config fields use the defaults.
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

// Name returns "cnpja".
func (a *Adapter) Name() string { return Name }

// Kind reports the company lookup family.
func (a *Adapter) Kind() entity.Kind { return entity.KindCompany }

type payload struct {
	TaxID   string `json:"taxId"`
	Alias   string `json:"alias"`
	Founded string `json:"founded"`
	Status  struct {
		Text string `json:"text"`
	} `json:"status"`
	Company struct {
		Name   string  `json:"name"`
		Equity float64 `json:"equity"`
		Size   struct {
			Text string `json:"text"`
		} `json:"size"`
		Nature struct {
			Text string `json:"text"`
		} `json:"nature"`
	} `json:"company"`
	MainActivity struct {
		Text string `json:"text"`
	} `json:"mainActivity"`
	Phones []struct {
		Area   string `json:"area"`
		Number string `json:"number"`
	} `json:"phones"`
	Emails []struct {
		Address string `json:"address"`
	} `json:"emails"`
	Address struct {
		Street   string `json:"street"`
		Number   string `json:"number"`
		Details  string `json:"details"`
		District string `json:"district"`
		City     string `json:"city"`
		State    string `json:"state"`
		Zip      string `json:"zip"`
	} `json:"address"`
}

// Lookup fetches and normalizes one company registration. Unknown CNPJs
// answer 404, which FromStatus maps to confirmed absence.
func (a *Adapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindCompany {
		return nil, providers.Permanent(Name, providers.CodeWrongKind, "cnpja only serves company lookups", nil)
	}

	url := fmt.Sprintf("%s/office/%s", a.cfg.BaseURL, key.String())
	var p payload
	if err := providers.GetJSON(ctx, a.client, Name, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	c := &entity.Company{
		CNPJ:             p.TaxID,
		LegalName:        p.Company.Name,
		TradeName:        p.Alias,
		Status:           p.Status.Text,
		RegistrationDate: p.Founded,
		Phone:            p.phone(),
		Email:            p.email(),
		PrimaryActivity:  p.MainActivity.Text,
		CompanySize:      p.Company.Size.Text,
		ShareCapital:     p.Company.Equity,
		LegalNature:      p.Company.Nature.Text,
		Address:          p.address(),
	}
	return providers.FinishCompany(c, key, Name, a.cfg.Clock)
}

func (p payload) phone() string {
	if len(p.Phones) == 0 {
		return ""
	}
	return p.Phones[0].Area + p.Phones[0].Number
}

func (p payload) email() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0].Address
}

func (p payload) address() *entity.Address {
	if p.Address.Zip == "" {
		return nil
	}
	street := p.Address.Street
	if p.Address.Number != "" && street != "" {
		street = street + ", " + p.Address.Number
	}
	return &entity.Address{
		PostalCode:   p.Address.Zip,
		Street:       street,
		Unit:         p.Address.Details,
		Neighborhood: p.Address.District,
		City:         p.Address.City,
		State:        p.Address.State,
	}
}

// Healthy probes the office endpoint with a malformed id.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/office/00000000000000", a.cfg.BaseURL), a.cfg.UserAgent)
}
