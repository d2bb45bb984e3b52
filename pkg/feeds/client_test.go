package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"decentralized-finance-defi","name":"Decentralized Finance (DeFi)","market_cap":1},
			{"id":"","name":"nameless"},
			{"id":"layer-1","name":" Layer 1 (L1) "}
		]`))
	})
	mux.HandleFunc("/protocols", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"1","slug":"uniswap","name":"Uniswap","description":"DEX","logo":"https://icons/uni.png","category":"Dexes","url":"https://uniswap.org","symbol":"UNI"},
			{"id":"2","slug":"bare","name":"Bare","description":null,"logo":null,"category":null,"url":null,"symbol":"-"},
			{"id":"3","slug":"","name":""}
		]`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCategories(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(config.CatalogConfig{TagFeedURL: srv.URL + "/coins/categories"}, logger.Nop())

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: "decentralized-finance-defi", Name: "Decentralized Finance (DeFi)"},
		{ID: "layer-1", Name: "Layer 1 (L1)"},
	}, got)
}

func TestProtocols(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(config.CatalogConfig{ProtocolFeedURL: srv.URL + "/protocols"}, logger.Nop())

	got, err := c.Protocols(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "uniswap", got[0].Slug)
	require.NotNil(t, got[0].Category)
	assert.Equal(t, "Dexes", *got[0].Category)
	assert.Nil(t, got[1].Logo)
}

func TestFeedErrors(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(config.CatalogConfig{TagFeedURL: srv.URL + "/broken"}, logger.Nop())

	_, err := c.Categories(context.Background())
	require.Error(t, err)

	_, err = c.Protocols(context.Background())
	require.Error(t, err)
}
