// Package opencnpj looks up company registrations on OpenCNPJ
// (https://api.opencnpj.org/).
package opencnpj

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
	Name = "opencnpj"

	defaultBaseURL = "https://api.opencnpj.org"
	defaultTimeout = 30 * time.Second
)

// Adapter implements providers.Provider for OpenCNPJ.
type Adapter struct {
	cfg    providers.Config
	client *http.Client
}

// New creates an OpenCNPJ adapter. Zero config fields use the defaults.
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

// Name returns "opencnpj".
func (a *Adapter) Name() string { return Name }

// Kind reports the company lookup family.
func (a *Adapter) Kind() entity.Kind { return entity.KindCompany }

type payload struct {
	CNPJ                string `json:"cnpj"`
	RazaoSocial         string `json:"razao_social"`
	NomeFantasia        string `json:"nome_fantasia"`
	SituacaoCadastral   string `json:"situacao_cadastral"`
	DataInicioAtividade string `json:"data_inicio_atividade"`
	Telefone1           string `json:"telefone_1"`
	Email               string `json:"email"`
	AtividadePrincipal  string `json:"atividade_principal"`
	CapitalSocial       string `json:"capital_social"`
	Porte               string `json:"porte"`
	NaturezaJuridica    string `json:"natureza_juridica"`
	Logradouro          string `json:"logradouro"`
	Numero              string `json:"numero"`
	Complemento         string `json:"complemento"`
	Bairro              string `json:"bairro"`
	Municipio           string `json:"municipio"`
	UF                  string `json:"uf"`
	CEP                 string `json:"cep"`
}

// Lookup fetches and normalizes one company registration. Unknown CNPJs
// answer 404, which FromStatus maps to confirmed absence.
func (a *Adapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindCompany {
		return nil, providers.Permanent(Name, providers.CodeWrongKind, "opencnpj only serves company lookups", nil)
	}

	url := fmt.Sprintf("%s/%s", a.cfg.BaseURL, key.String())
	var p payload
	if err := providers.GetJSON(ctx, a.client, Name, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	c := &entity.Company{
		CNPJ:             p.CNPJ,
		LegalName:        p.RazaoSocial,
		TradeName:        p.NomeFantasia,
		Status:           p.SituacaoCadastral,
		RegistrationDate: p.DataInicioAtividade,
		Phone:            p.Telefone1,
		Email:            p.Email,
		PrimaryActivity:  p.AtividadePrincipal,
		CompanySize:      p.Porte,
		ShareCapital:     parseCapital(p.CapitalSocial),
		LegalNature:      p.NaturezaJuridica,
		Address:          p.address(),
	}
	return providers.FinishCompany(c, key, Name, a.cfg.Clock)
}

// parseCapital handles OpenCNPJ's string-typed capital, which uses a comma
// as the decimal separator ("150000,00").
func parseCapital(s string) float64 {
	var whole, frac float64
	var fracDigits int
	inFrac := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if inFrac {
				frac = frac*10 + float64(r-'0')
				fracDigits++
			} else {
				whole = whole*10 + float64(r-'0')
			}
		case r == ',' || r == '.':
			if inFrac {
				return 0
			}
			inFrac = true
		default:
			return 0
		}
	}
	for i := 0; i < fracDigits; i++ {
		frac /= 10
	}
	return whole + frac
}

func (p payload) address() *entity.Address {
	if p.CEP == "" {
		return nil
	}
	street := p.Logradouro
	if p.Numero != "" && street != "" {
		street = street + ", " + p.Numero
	}
	return &entity.Address{
		PostalCode:   p.CEP,
		Street:       street,
		Unit:         p.Complemento,
		Neighborhood: p.Bairro,
		City:         p.Municipio,
		State:        p.UF,
	}
}

// Healthy probes the lookup endpoint with a malformed id.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/00000000000000", a.cfg.BaseURL), a.cfg.UserAgent)
}
