package storefront

import (
	"errors"
	"strings"
)

// APIVersion is the Admin GraphQL API version the client speaks
const APIVersion = "2025-01"

// Errors for storefront configuration
var (
	ErrConfigMissingStoreURL    = errors.New("storefront: store URL is required")
	ErrConfigMissingAccessToken = errors.New("storefront: access token is required")
)

// Config holds configuration for one storefront Admin API connection
type Config struct {
	// Name identifies the store in logs and failure reports
	Name string
	// StoreURL is the store domain (e.g. 'your-store.myshopify.com')
	StoreURL string
	// AccessToken is the Admin API access token
	AccessToken string
	// LocationID is the inventory location GID (e.g. 'gid://shopify/Location/123')
	LocationID string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates a storefront configuration with defaults
func NewConfig(name, storeURL, accessToken, locationID string) *Config {
	return &Config{
		Name:           name,
		StoreURL:       storeURL,
		AccessToken:    accessToken,
		LocationID:     locationID,
		TimeoutSeconds: 30,
	}
}

// Validate validates the storefront configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return ErrConfigMissingStoreURL
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.Name == "" {
		c.Name = c.StoreURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Endpoint returns the GraphQL endpoint URL for the store. A scheme in the
// configured URL is preserved so tests can point at a plain HTTP server.
func (c *Config) Endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.StoreURL), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base + "/admin/api/" + APIVersion + "/graphql.json"
}
