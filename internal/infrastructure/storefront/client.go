package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ordersPageSize is the orders page size for sales queries (API max is 250)
const ordersPageSize = 250

// Client is an Admin GraphQL API client for one storefront. It implements the
// synchronization source interfaces for inventory and sales.
type Client struct {
	config     *Config
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new storefront client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:   config,
		endpoint: config.Endpoint(),
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Name identifies the store in failure reports
func (c *Client) Name() string {
	return c.config.Name
}

// executeQuery performs a GraphQL request and returns the data payload
func (c *Client) executeQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("storefront: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", syncdomain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("storefront: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", syncdomain.ErrSourceUnavailable, resp.StatusCode)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: invalid response: %v", syncdomain.ErrSourceUnavailable, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("%w: graphql errors: %s", syncdomain.ErrSourceUnavailable, strings.Join(messages, ", "))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: invalid data payload: %v", syncdomain.ErrSourceUnavailable, err)
	}
	return nil
}

const shopQuery = `
{
    shop {
        name
        email
        currencyCode
        primaryDomain {
            url
        }
    }
}`

// TestConnection verifies credentials by fetching basic shop information
func (c *Client) TestConnection(ctx context.Context) (*ShopInfo, error) {
	var data shopData
	if err := c.executeQuery(ctx, shopQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data.Shop, nil
}

const locationsQuery = `
{
    locations(first: 50) {
        edges {
            node {
                id
                name
                address {
                    city
                    province
                    country
                }
            }
        }
    }
}`

// Locations lists the store's inventory locations
func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	var data locationsData
	if err := c.executeQuery(ctx, locationsQuery, nil, &data); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(data.Locations.Edges))
	for _, edge := range data.Locations.Edges {
		locations = append(locations, edge.Node)
	}
	return locations, nil
}

const bulkInventoryQuery = `
query GetBulkInventory($query: String!, $locationId: ID!) {
    productVariants(first: 250, query: $query) {
        edges {
            node {
                id
                sku
                inventoryItem {
                    id
                    inventoryLevel(locationId: $locationId) {
                        quantities(names: "available") {
                            quantity
                            name
                        }
                    }
                }
            }
        }
    }
}`

// maxVariantsPerQuery is the variant page limit of the Admin API. Oversized
// caller batches are split so every request fits one page.
const maxVariantsPerQuery = 250

// QueryInventory fetches available quantities for a batch of SKUs at the
// configured location, using OR-composite query syntax. SKUs the store does
// not carry are reported as not found.
func (c *Client) QueryInventory(ctx context.Context, skus []string) (map[string]syncdomain.InventoryResult, error) {
	if len(skus) == 0 {
		return map[string]syncdomain.InventoryResult{}, nil
	}
	if c.config.LocationID == "" {
		return nil, fmt.Errorf("%w: storefront %s has no location configured", syncdomain.ErrInvalidConfiguration, c.config.Name)
	}

	results := make(map[string]syncdomain.InventoryResult, len(skus))
	for _, sku := range skus {
		results[sku] = syncdomain.InventoryResult{}
	}

	for _, chunk := range syncdomain.SplitBatches(skus, maxVariantsPerQuery) {
		variables := map[string]any{
			"query":      buildSKUQuery(chunk),
			"locationId": c.config.LocationID,
		}

		var data inventoryData
		if err := c.executeQuery(ctx, bulkInventoryQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, edge := range data.ProductVariants.Edges {
			node := edge.Node
			if node.SKU == "" {
				continue
			}

			quantity := 0
			if level := node.InventoryItem.InventoryLevel; level != nil {
				for _, q := range level.Quantities {
					if q.Name == "available" {
						quantity = q.Quantity
						break
					}
				}
			}
			results[node.SKU] = syncdomain.InventoryResult{Found: true, Quantity: quantity}
		}
	}
	return results, nil
}

const salesQuery = `
query GetOrdersByTagAndSKUs($cursor: String, $query: String, $pageSize: Int!) {
    orders(first: $pageSize, after: $cursor, query: $query) {
        pageInfo {
            hasNextPage
            endCursor
        }
        edges {
            node {
                id
                createdAt
                lineItems(first: 250) {
                    edges {
                        node {
                            sku
                            quantity
                        }
                    }
                }
            }
        }
    }
}`

// QuerySales sums quantities sold per SKU across all matching orders. Orders
// are filtered server-side by tag, creation date and SKU, then walked with
// cursor pagination. A failed page fails the whole query.
func (c *Client) QuerySales(ctx context.Context, skus []string, tag string, since time.Time) (map[string]int, error) {
	if len(skus) == 0 || tag == "" {
		return map[string]int{}, nil
	}

	queryString := fmt.Sprintf("created_at:>=%s AND tag:%s AND (%s)",
		since.UTC().Format("2006-01-02T15:04:05Z"), tag, buildSKUQuery(skus))

	wanted := make(map[string]bool, len(skus))
	for _, sku := range skus {
		wanted[sku] = true
	}

	sales := make(map[string]int)
	cursor := ""
	for {
		variables := map[string]any{
			"query":    queryString,
			"pageSize": ordersPageSize,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}

		var data ordersData
		if err := c.executeQuery(ctx, salesQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, orderEdge := range data.Orders.Edges {
			for _, liEdge := range orderEdge.Node.LineItems.Edges {
				item := liEdge.Node
				// The server-side SKU filter matches whole orders, so line
				// items outside the batch still appear and must be skipped.
				if item.SKU == "" || !wanted[item.SKU] {
					continue
				}
				sales[item.SKU] += item.Quantity
			}
		}

		if !data.Orders.PageInfo.HasNextPage {
			break
		}
		cursor = data.Orders.PageInfo.EndCursor
	}
	return sales, nil
}

// buildSKUQuery builds the OR-composite search expression "sku:A OR sku:B"
func buildSKUQuery(skus []string) string {
	parts := make([]string, len(skus))
	for i, sku := range skus {
		parts[i] = "sku:" + sku
	}
	return strings.Join(parts, " OR ")
}

// Ensure Client implements the sync source interfaces
var (
	_ syncdomain.InventorySource = (*Client)(nil)
	_ syncdomain.SalesSource     = (*Client)(nil)
)
