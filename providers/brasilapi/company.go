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
	// CompanyName is the registry name of the CNPJ adapter.
	CompanyName = "brasilapi-cnpj"

	defaultCompanyTimeout = 30 * time.Second
)

// CompanyAdapter implements providers.Provider for the BrasilAPI CNPJ
// endpoint, backed by official Receita Federal data.
type CompanyAdapter struct {
	cfg    providers.Config
	client *http.Client
}

// NewCompany creates a BrasilAPI company adapter.
func NewCompany(cfg providers.Config) *CompanyAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultCompanyTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = providers.DefaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &CompanyAdapter{cfg: cfg, client: client}
}

// Name returns "brasilapi-cnpj".
func (a *CompanyAdapter) Name() string { return CompanyName }

// Kind reports the company lookup family.
func (a *CompanyAdapter) Kind() entity.Kind { return entity.KindCompany }

type companyPayload struct {
	CNPJ                 string  `json:"cnpj"`
	RazaoSocial          string  `json:"razao_social"`
	NomeFantasia         string  `json:"nome_fantasia"`
	SituacaoCadastral    string  `json:"descricao_situacao_cadastral"`
	DataInicioAtividade  string  `json:"data_inicio_atividade"`
	CapitalSocial        float64 `json:"capital_social"`
	DDDTelefone1         string  `json:"ddd_telefone_1"`
	Email                string  `json:"correio_eletronico"`
	CNAEFiscalDescricao  string  `json:"cnae_fiscal_descricao"`
	DescricaoPorte       string  `json:"descricao_porte"`
	NaturezaJuridica     string  `json:"natureza_juridica"`
	TipoLogradouro       string  `json:"descricao_tipo_logradouro"`
	Logradouro           string  `json:"logradouro"`
	Numero               string  `json:"numero"`
	Complemento          string  `json:"complemento"`
	Bairro               string  `json:"bairro"`
	Municipio            string  `json:"municipio"`
	UF                   string  `json:"uf"`
	CEP                  string  `json:"cep"`
}

// Lookup fetches and normalizes one company registration.
func (a *CompanyAdapter) Lookup(ctx context.Context, key providers.Key) (entity.Entity, error) {
	if key.Kind() != entity.KindCompany {
		return nil, providers.Permanent(CompanyName, providers.CodeWrongKind, "adapter only serves company lookups", nil)
	}

	url := fmt.Sprintf("%s/cnpj/v1/%s", a.cfg.BaseURL, key.String())
	var p companyPayload
	if err := providers.GetJSON(ctx, a.client, CompanyName, url, a.cfg.UserAgent, &p); err != nil {
		return nil, err
	}

	c := &entity.Company{
		CNPJ:             p.CNPJ,
		LegalName:        p.RazaoSocial,
		TradeName:        p.NomeFantasia,
		Status:           p.SituacaoCadastral,
		RegistrationDate: p.DataInicioAtividade,
		Phone:            p.DDDTelefone1,
		Email:            p.Email,
		PrimaryActivity:  p.CNAEFiscalDescricao,
		CompanySize:      p.DescricaoPorte,
		ShareCapital:     p.CapitalSocial,
		LegalNature:      p.NaturezaJuridica,
		Address:          p.address(),
	}
	return providers.FinishCompany(c, key, CompanyName, a.cfg.Clock)
}

func (p companyPayload) address() *entity.Address {
	if p.CEP == "" {
		return nil
	}
	street := p.Logradouro
	if p.TipoLogradouro != "" && street != "" {
		street = p.TipoLogradouro + " " + street
	}
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

// Healthy probes the CNPJ endpoint with a malformed id; any HTTP answer
// below 500 means the service is up.
func (a *CompanyAdapter) Healthy(ctx context.Context) bool {
	return providers.Probe(ctx, a.client, fmt.Sprintf("%s/cnpj/v1/00000000000000", a.cfg.BaseURL), a.cfg.UserAgent)
}
