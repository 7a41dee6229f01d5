package sync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryResult is the per-identifier outcome of a composite inventory query.
type InventoryResult struct {
	Found    bool
	Quantity int
}

// InventorySource answers composite inventory queries against one storefront.
// Implementations must be atomic per batch: either a complete per-identifier
// map is returned or an error, never a mix. Retrying is the caller's concern.
type InventorySource interface {
	Name() string
	// QueryInventory resolves available quantities for a batch of SKUs in a
	// single round trip. SKUs unknown to the store carry Found=false or are
	// absent from the map.
	QueryInventory(ctx context.Context, skus []string) (map[string]InventoryResult, error)
}

// SalesSource answers composite sales queries against one storefront. SKUs
// absent from the result sold zero units; absence is not "not found".
type SalesSource interface {
	Name() string
	// QuerySales sums quantities sold per SKU for orders carrying the given
	// tag and created at or after since.
	QuerySales(ctx context.Context, skus []string, tag string, since time.Time) (map[string]int, error)
}

// PriceSource resolves unit prices from the order-management database, one
// identifier per lookup. Lookups may run concurrently within a batch.
type PriceSource interface {
	Name() string
	QueryPrice(ctx context.Context, sku string) (decimal.Decimal, bool, error)
}
