package storefront

import "encoding/json"

// graphQLRequest is the POST body for the Admin GraphQL endpoint
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLError is a single error entry in a GraphQL response
type graphQLError struct {
	Message string `json:"message"`
}

// graphQLResponse is the envelope every GraphQL response arrives in
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// ShopInfo describes the store returned by a connection test
type ShopInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CurrencyCode  string `json:"currencyCode"`
	PrimaryDomain struct {
		URL string `json:"url"`
	} `json:"primaryDomain"`
}

type shopData struct {
	Shop ShopInfo `json:"shop"`
}

// Location is one inventory location of the store
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address struct {
		City     string `json:"city"`
		Province string `json:"province"`
		Country  string `json:"country"`
	} `json:"address"`
}

type locationsData struct {
	Locations struct {
		Edges []struct {
			Node Location `json:"node"`
		} `json:"edges"`
	} `json:"locations"`
}

type inventoryData struct {
	ProductVariants struct {
		Edges []struct {
			Node struct {
				ID            string `json:"id"`
				SKU           string `json:"sku"`
				InventoryItem struct {
					ID             string `json:"id"`
					InventoryLevel *struct {
						Quantities []struct {
							Name     string `json:"name"`
							Quantity int    `json:"quantity"`
						} `json:"quantities"`
					} `json:"inventoryLevel"`
				} `json:"inventoryItem"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"productVariants"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type ordersData struct {
	Orders struct {
		PageInfo pageInfo `json:"pageInfo"`
		Edges    []struct {
			Node struct {
				ID        string `json:"id"`
				CreatedAt string `json:"createdAt"`
				LineItems struct {
					Edges []struct {
						Node struct {
							SKU      string `json:"sku"`
							Quantity int    `json:"quantity"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"lineItems"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"orders"`
}
