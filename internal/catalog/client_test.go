package catalog_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart/internal/catalog"
	"shopcart/internal/consul"
)

const catalogJSON = `[
  {"id": "1", "name": "Fruit", "productCount": 2, "products": [
    {"id": "p1", "name": "Apple", "attribute": "1 kg", "imageURL": "https://img/p1", "price": 10.5, "priceText": "₺10,50"},
    {"id": "p2", "name": "Pear", "attribute": "1 kg", "thumbnailURL": "https://img/p2", "priceText": "₺5,00"}
  ]},
  {"id": "2", "name": "Dairy", "productCount": 1, "products": [
    {"id": "p3", "name": "Milk", "attribute": "1 l", "priceText": "₺3,00"}
  ]}
]`

const suggestedJSON = `[{"id": "s", "name": "Suggested", "productCount": 1, "products": [
  {"id": "p9", "name": "Bread", "attribute": "500 g", "priceText": "₺2,00"}
]}]`

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	})
	mux.HandleFunc("/suggestedProducts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(suggestedJSON))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchCatalogPage(t *testing.T) {
	srv := catalogServer(t)
	c := catalog.NewClient(catalog.WithURLs(srv.URL+"/products", srv.URL+"/suggestedProducts"))

	products, err := c.FetchCatalogPage(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "₺10,50", products[0].PriceText)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, 10.5, *products[0].Price)
	assert.Nil(t, products[1].Price)
	assert.Equal(t, "https://img/p2", products[1].BestImageURL())

	suggested, err := c.FetchSuggested(context.Background())
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, "p9", suggested[0].ID)
}

func TestClient_UpstreamErrors(t *testing.T) {
	srv := catalogServer(t)

	_, err := catalog.NewClient(catalog.WithURLs(srv.URL+"/broken", "")).FetchCatalogPage(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUpstream)

	_, err = catalog.NewClient(catalog.WithURLs(srv.URL+"/garbage", "")).FetchCatalogPage(context.Background())
	assert.Error(t, err)
}

func TestClient_ResolvesThroughConsul(t *testing.T) {
	srv := catalogServer(t)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portText, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portText)
	require.NoError(t, err)

	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health/service/products" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"Node":    map[string]any{"Address": host},
			"Service": map[string]any{"Service": "products", "Address": "", "Port": port},
		}})
	}))
	defer agent.Close()

	client, err := consul.NewClient(agent.Listener.Addr().String())
	require.NoError(t, err)

	c := catalog.NewClient(catalog.WithConsul(client, "products"))
	products, err := c.FetchCatalogPage(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	suggested, err := c.FetchSuggested(context.Background())
	require.NoError(t, err)
	assert.Len(t, suggested, 1)
	assert.Equal(t, "consul:products", c.String())
}

func TestClient_ConsulWithoutInstances(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer agent.Close()

	client, err := consul.NewClient(agent.Listener.Addr().String())
	require.NoError(t, err)

	_, err = catalog.NewClient(catalog.WithConsul(client, "products")).FetchCatalogPage(context.Background())
	assert.Error(t, err)
}
