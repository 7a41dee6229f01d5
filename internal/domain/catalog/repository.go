package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the persistence boundary for catalog products.
// The sync engine only reads identifiers and writes numeric fields through
// BatchUpdateField; everything else serves the CRUD surface.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	// FindAll returns all products ordered by name.
	FindAll(ctx context.Context) ([]Product, error)
	// FindByIDs returns the products matching the given IDs, ordered by name.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteAll removes every product and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)
	// ClearField nulls one sync-writable column for all products and returns
	// the number of rows touched.
	ClearField(ctx context.Context, field SyncField) (int64, error)
	// BatchUpdateField applies updates keyed by barcode to a single column in
	// one transaction and returns the number of rows updated.
	BatchUpdateField(ctx context.Context, field SyncField, updates map[string]decimal.Decimal) (int64, error)
}

// SettingsRepository manages the single settings row.
type SettingsRepository interface {
	// Get returns the settings row, creating the default row if absent.
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, settings *Settings) error
}
