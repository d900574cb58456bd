package viacep

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

const sampleResponse = `{
	"cep": "88304-053",
	"logradouro": "Rua Doutor Pedro Ferreira",
	"complemento": "até 453/454",
	"bairro": "Centro",
	"localidade": "Itajaí",
	"uf": "SC",
	"ibge": "4208203",
	"ddd": "47"
}`

func newServerAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(providers.Config{BaseURL: server.URL})
}

func key(t *testing.T) providers.Key {
	t.Helper()
	k, err := providers.AddressKey("88304-053")
	require.NoError(t, err)
	return k
}

func TestAdapter_Lookup(t *testing.T) {
	adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/88304053/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	got, err := adapter.Lookup(context.Background(), key(t))
	require.NoError(t, err)

	addr, ok := got.(*entity.Address)
	require.True(t, ok)
	assert.Equal(t, "88304-053", addr.PostalCode)
	assert.Equal(t, "Rua Doutor Pedro Ferreira", addr.Street)
	assert.Equal(t, "Centro", addr.Neighborhood)
	assert.Equal(t, "Itajaí", addr.City)
	assert.Equal(t, "SC", addr.State)
	assert.Equal(t, "4208203", addr.IBGECode)
	assert.Equal(t, "47", addr.AreaCode)
	assert.Equal(t, Name, addr.VerificationSource)
	assert.True(t, addr.IsVerified)
}

func TestAdapter_LookupNotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bool marker", body: `{"erro": true}`},
		{name: "string marker", body: `{"erro": "true"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := adapter.Lookup(context.Background(), key(t))
			assert.True(t, providers.IsNotFound(err))
		})
	}
}

func TestAdapter_LookupServerError(t *testing.T) {
	adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := adapter.Lookup(context.Background(), key(t))
	assert.True(t, providers.IsTransient(err))
}

func TestAdapter_LookupMalformedBody(t *testing.T) {
	adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := adapter.Lookup(context.Background(), key(t))
	require.Error(t, err)
	var f *providers.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, providers.CodeMalformedPayload, f.Code)
}

func TestAdapter_LookupIdentityMismatch(t *testing.T) {
	adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cep": "01001-000", "localidade": "São Paulo"}`))
	})

	_, err := adapter.Lookup(context.Background(), key(t))
	assert.True(t, providers.IsPermanent(err))
}

func TestAdapter_LookupWrongKind(t *testing.T) {
	adapter := New(providers.Config{})
	companyKey, err := providers.CompanyKey("11.222.333/0001-81")
	require.NoError(t, err)

	_, err = adapter.Lookup(context.Background(), companyKey)
	assert.True(t, providers.IsPermanent(err))
}

func TestAdapter_LookupCancelled(t *testing.T) {
	block := make(chan struct{})
	adapter := newServerAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Lookup(ctx, key(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdapter_Defaults(t *testing.T) {
	adapter := New(providers.Config{})
	assert.Equal(t, Name, adapter.Name())
	assert.Equal(t, entity.KindAddress, adapter.Kind())
	assert.Equal(t, defaultBaseURL, adapter.cfg.BaseURL)
}
