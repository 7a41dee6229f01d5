package sources

import (
	"fmt"

	"github.com/stocklink/backend/internal/domain/catalog"
	syncdomain "github.com/stocklink/backend/internal/domain/sync"
	"github.com/stocklink/backend/internal/infrastructure/ordersdb"
	"github.com/stocklink/backend/internal/infrastructure/storefront"
)

// Provider builds sync source clients from the runtime settings. Storefront
// clients are constructed per run because credentials are operator-editable;
// the orders database connection is static and shared.
type Provider struct {
	ordersDB *ordersdb.Client
}

// NewProvider creates a source provider. ordersDB may be nil when no
// order-management database is configured; price runs then fail at plan time.
func NewProvider(ordersDB *ordersdb.Client) *Provider {
	return &Provider{ordersDB: ordersDB}
}

// InventorySource returns a client for the primary storefront.
func (p *Provider) InventorySource(settings *catalog.Settings) (syncdomain.InventorySource, error) {
	for i, cred := range settings.StoreSlots() {
		if !cred.Configured() {
			continue
		}
		client, err := storefront.NewClient(storefront.NewConfig(slotName(i), cred.URL, cred.AccessToken, cred.LocationID))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slotName(i), err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("no storefront configured")
}

// SalesSources returns one client per configured storefront, in slot order.
func (p *Provider) SalesSources(settings *catalog.Settings) ([]syncdomain.SalesSource, error) {
	var clients []syncdomain.SalesSource
	for i, cred := range settings.StoreSlots() {
		if !cred.Configured() {
			continue
		}
		client, err := storefront.NewClient(storefront.NewConfig(slotName(i), cred.URL, cred.AccessToken, cred.LocationID))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slotName(i), err)
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// PriceSource returns the orders database client.
func (p *Provider) PriceSource() (syncdomain.PriceSource, error) {
	if p.ordersDB == nil {
		return nil, fmt.Errorf("orders database is not configured")
	}
	return p.ordersDB, nil
}

// slotName names a storefront by its settings slot, one-based
func slotName(index int) string {
	return fmt.Sprintf("store-%d", index+1)
}
