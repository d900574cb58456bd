package opencnpj

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/providers"
)

func TestAdapter_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/11222333000181", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"cnpj": "11222333000181",
			"razao_social": "EMPRESA TESTE LTDA",
			"nome_fantasia": "TESTE",
			"situacao_cadastral": "Ativa",
			"data_inicio_atividade": "2010-03-15",
			"telefone_1": "4733331111",
			"email": "contato@teste.com.br",
			"atividade_principal": "Desenvolvimento de programas de computador sob encomenda",
			"capital_social": "150000,00",
			"porte": "Microempresa (ME)",
			"natureza_juridica": "Sociedade Empresária Limitada",
			"logradouro": "RUA DOUTOR PEDRO FERREIRA",
			"numero": "333",
			"bairro": "CENTRO",
			"municipio": "ITAJAI",
			"uf": "SC",
			"cep": "88304053"
		}`))
	}))
	t.Cleanup(server.Close)

	adapter := New(providers.Config{BaseURL: server.URL})
	key, err := providers.CompanyKey("11222333000181")
	require.NoError(t, err)

	got, err := adapter.Lookup(context.Background(), key)
	require.NoError(t, err)

	c := got.(*entity.Company)
	assert.Equal(t, "11.222.333/0001-81", c.CNPJ)
	assert.Equal(t, "EMPRESA TESTE LTDA", c.LegalName)
	assert.Equal(t, 150000.0, c.ShareCapital)
	assert.Equal(t, Name, c.VerificationSource)
	require.NotNil(t, c.Address)
	assert.Equal(t, "88304-053", c.Address.PostalCode)
}

func TestAdapter_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	adapter := New(providers.Config{BaseURL: server.URL})
	key, err := providers.CompanyKey("11222333000181")
	require.NoError(t, err)

	_, err = adapter.Lookup(context.Background(), key)
	assert.True(t, providers.IsNotFound(err))
}

func TestParseCapital(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150000,00", 150000},
		{"1234,56", 1234.56},
		{"0,00", 0},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCapital(tt.in), "input %q", tt.in)
	}
}
