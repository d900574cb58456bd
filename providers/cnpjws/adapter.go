// Package cnpjws looks up company registrations on the public CNPJ.ws API
// (https://publica.cnpj.ws/). The public tier allows three requests per
// minute, so registrations should carry DefaultRateInterval.
package cnpjws

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
	Name = "cnpjws"

	// DefaultRateInterval spaces requests to stay inside the public tier.
	DefaultRateInterval = 20 * time.Second

	defaultBaseURL = "https://publica.cnpj.ws"
	defaultTimeout = 30 * time.Second
)

// Adapter implements providers.Provider for CNPJ.ws.
type Adapter struct {
	cfg    providers.Config
	client *http.Client
}

// New creates a CNPJ.ws adapter. Zero config fields use the defaults.
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

// Name returns "cnpjws".
func (a *Adapter) Name() string { return Name }

// Kind reports the company lookup family.
func (a *Adapter) Kind() entity.Kind { return entity.KindCompany }

type payload struct {
	RazaoSocial   string  `json:"razao_social"`
	CapitalSocial float64 `json:"capital_social,string"`
	Porte         struct {
		Descricao string `json:"descricao"`
	} `json:"porte"`
	NaturezaJuridica struct {
		Descricao string `json:"descricao"`
	} `json:"natureza_juridica"`
	Estabelecimento struct {
		CNPJ                string `json:"cnpj"`
		NomeFantasia        string `json:"nome_fantasia"`
		SituacaoCadastral   string `json:"situacao_cadastral"`
		DataInicioAtividade string `json:"data_inicio_atividade"`
		TipoLogradouro      string `json:"tipo_logradouro"`
		Logradouro          string `json:"logradouro"`
		Numero              string `json:"numero"`
		Complemento         string `json:"complemento"`
		Bairro              string `json:"bairro"`
		CEP                 string `json:"cep"`
		DDD1                string `json:"ddd1"`
		Telefone1           string `json:"telefone1"`
		Email               string `json:"email"`
		Cidade              struct {
			Nome string `json:"nome"`
		} `json:"cidade"`
		Estado struct {
			Sigla string `json:"sigla"`
		} `json:"estado"`
		AtividadePrincipal struct {
			Descricao string `json:"descricao"`
		} `json:"atividade_principal"`
	} `json:"estabelecimento"`
}

// Lookup fetches and normalizes one company registration. CNPJ.ws nests
// most establishment data one level down.
func (a *Adapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindCompany {
		return nil, providers.Permanent(Name, providers.CodeWrongKind, "cnpjws only serves company lookups", nil)
	}

	url := fmt.Sprintf("%s/cnpj/%s", a.cfg.BaseURL, key.String())
	var p payload
	if err := providers.GetJSON(ctx, a.client, Name, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	est := p.Estabelecimento
	c := &entity.Company{
		CNPJ:             est.CNPJ,
		LegalName:        p.RazaoSocial,
		TradeName:        est.NomeFantasia,
		Status:           est.SituacaoCadastral,
		RegistrationDate: est.DataInicioAtividade,
		Phone:            est.DDD1 + est.Telefone1,
		Email:            est.Email,
		PrimaryActivity:  est.AtividadePrincipal.Descricao,
		CompanySize:      p.Porte.Descricao,
		ShareCapital:     p.CapitalSocial,
		LegalNature:      p.NaturezaJuridica.Descricao,
		Address:          p.address(),
	}
	return providers.FinishCompany(c, key, Name, a.cfg.Clock)
}

func (p payload) address() *entity.Address {
	est := p.Estabelecimento
	if est.CEP == "" {
		return nil
	}
	street := est.Logradouro
	if est.TipoLogradouro != "" && street != "" {
		street = est.TipoLogradouro + " " + street
	}
	if est.Numero != "" && street != "" {
		street = street + ", " + est.Numero
	}
	return &entity.Address{
		PostalCode:   est.CEP,
		Street:       street,
		Unit:         est.Complemento,
		Neighborhood: est.Bairro,
		City:         est.Cidade.Nome,
		State:        est.Estado.Sigla,
	}
}

// Healthy probes the lookup endpoint with a malformed id.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/cnpj/00000000000000", a.cfg.BaseURL), a.cfg.UserAgent)
}
