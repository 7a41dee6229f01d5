package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		Name:        "test-store",
		StoreURL:    server.URL,
		AccessToken: "test-token",
		LocationID:  "gid://shopify/Location/123",
	})
	require.NoError(t, err)
	return client
}

func decodeRequest(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()

	var req graphQLRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{AccessToken: "tok"})
	assert.ErrorIs(t, err, ErrConfigMissingStoreURL)

	_, err = NewClient(&Config{StoreURL: "store.example.com"})
	assert.ErrorIs(t, err, ErrConfigMissingAccessToken)

	c, err := NewClient(&Config{StoreURL: "store.example.com", AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "store.example.com", c.Name(), "name defaults to the store URL")
}

func TestConfig_Endpoint(t *testing.T) {
	cfg := &Config{StoreURL: "my-store.example.com"}
	assert.Equal(t, "https://my-store.example.com/admin/api/"+APIVersion+"/graphql.json", cfg.Endpoint())

	cfg = &Config{StoreURL: "http://127.0.0.1:9999/"}
	assert.Equal(t, "http://127.0.0.1:9999/admin/api/"+APIVersion+"/graphql.json", cfg.Endpoint())
}

func TestClient_TestConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))
		assert.Contains(t, r.URL.Path, "/admin/api/")

		w.Write([]byte(`{"data":{"shop":{"name":"Test Shop","email":"owner@example.com","currencyCode":"USD","primaryDomain":{"url":"https://test.example.com"}}}}`))
	})

	shop, err := client.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test Shop", shop.Name)
	assert.Equal(t, "USD", shop.CurrencyCode)
	assert.Equal(t, "https://test.example.com", shop.PrimaryDomain.URL)
}

func TestClient_TestConnection_GraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Invalid API key or access token"}]}`))
	})

	_, err := client.TestConnection(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "Invalid API key or access token")
}

func TestClient_TestConnection_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.TestConnection(context.Background())
	assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)
}

func TestClient_Locations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"locations":{"edges":[
			{"node":{"id":"gid://shopify/Location/1","name":"Warehouse","address":{"city":"Toronto","province":"ON","country":"Canada"}}},
			{"node":{"id":"gid://shopify/Location/2","name":"Storefront","address":{}}}
		]}}}`))
	})

	locations, err := client.Locations(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Warehouse", locations[0].Name)
	assert.Equal(t, "Toronto", locations[0].Address.City)
	assert.Equal(t, "gid://shopify/Location/2", locations[1].ID)
}

func TestClient_QueryInventory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "sku:A OR sku:B OR sku:C", req.Variables["query"])
		assert.Equal(t, "gid://shopify/Location/123", req.Variables["locationId"])

		w.Write([]byte(`{"data":{"productVariants":{"edges":[
			{"node":{"id":"v1","sku":"A","inventoryItem":{"id":"i1","inventoryLevel":{"quantities":[{"name":"available","quantity":17}]}}}},
			{"node":{"id":"v2","sku":"B","inventoryItem":{"id":"i2","inventoryLevel":null}}}
		]}}}`))
	})

	results, err := client.QueryInventory(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, syncdomain.InventoryResult{Found: true, Quantity: 17}, results["A"])
	assert.Equal(t, syncdomain.InventoryResult{Found: true, Quantity: 0}, results["B"],
		"variant without a level at the location counts as zero on hand")
	assert.Equal(t, syncdomain.InventoryResult{Found: false}, results["C"])
}

func TestClient_QueryInventory_EmptyBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty batch")
	})

	results, err := client.QueryInventory(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_QueryInventory_MissingLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client, err := NewClient(&Config{
		Name:        "no-location",
		StoreURL:    server.URL,
		AccessToken: "tok",
	})
	require.NoError(t, err)

	_, err = client.QueryInventory(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, syncdomain.ErrInvalidConfiguration)
}

func TestClient_QuerySales_PaginatesAndSums(t *testing.T) {
	page := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		query, _ := req.Variables["query"].(string)
		assert.Contains(t, query, "tag:warehouse")
		assert.Contains(t, query, "created_at:>=")
		assert.Contains(t, query, "(sku:X OR sku:Y)")

		page++
		switch page {
		case 1:
			assert.Nil(t, req.Variables["cursor"])
			w.Write([]byte(`{"data":{"orders":{
				"pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"},
				"edges":[{"node":{"id":"o1","createdAt":"2026-08-01T00:00:00Z","lineItems":{"edges":[
					{"node":{"sku":"X","quantity":3}},
					{"node":{"sku":"OTHER","quantity":99}}
				]}}}]}}}`))
		case 2:
			assert.Equal(t, "cursor-1", req.Variables["cursor"])
			w.Write([]byte(`{"data":{"orders":{
				"pageInfo":{"hasNextPage":false,"endCursor":""},
				"edges":[{"node":{"id":"o2","createdAt":"2026-08-02T00:00:00Z","lineItems":{"edges":[
					{"node":{"sku":"X","quantity":2}},
					{"node":{"sku":"Y","quantity":4}}
				]}}}]}}}`))
		default:
			t.Fatalf("unexpected page %d", page)
		}
	})

	since := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	sales, err := client.QuerySales(context.Background(), []string{"X", "Y"}, "warehouse", since)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"X": 5, "Y": 4}, sales)
	assert.Equal(t, 2, page)
}

func TestClient_QuerySales_FailedPageFailsQuery(t *testing.T) {
	page := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			w.Write([]byte(`{"data":{"orders":{
				"pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"},
				"edges":[{"node":{"id":"o1","createdAt":"2026-08-01T00:00:00Z","lineItems":{"edges":[
					{"node":{"sku":"X","quantity":3}}
				]}}}]}}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.QuerySales(context.Background(), []string{"X"}, "warehouse", time.Now().Add(-24*time.Hour))
	assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)
}

func TestClient_QuerySales_EmptyInputs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	sales, err := client.QuerySales(context.Background(), nil, "warehouse", time.Now())
	require.NoError(t, err)
	assert.Empty(t, sales)

	sales, err = client.QuerySales(context.Background(), []string{"X"}, "", time.Now())
	require.NoError(t, err)
	assert.Empty(t, sales)
}
