package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklink/backend/internal/domain/shared"
)

// SyncField identifies a product column that synchronization runs may update in bulk.
type SyncField string

const (
	FieldAvailableQuantity SyncField = "available_quantity"
	FieldPrice             SyncField = "price"
	FieldLastPeriodSold    SyncField = "last_period_sold_quantity"
)

// Valid reports whether f names a column the sync engine is allowed to write.
func (f SyncField) Valid() bool {
	switch f {
	case FieldAvailableQuantity, FieldPrice, FieldLastPeriodSold:
		return true
	}
	return false
}

// Product is a catalog entry. The barcode is the stable identifier joining
// this row to every external system of record.
type Product struct {
	ID                     uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name                   string           `gorm:"type:varchar(200);not null" json:"name"`
	Barcode                string           `gorm:"type:varchar(50);not null;uniqueIndex" json:"barcode"`
	ThresholdQuantity      *int             `json:"threshold_quantity"`
	QuantityPerCase        *int             `json:"quantity_per_case"`
	Price                  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"price"`
	AvailableQuantity      *int             `json:"available_quantity"`
	LastPeriodSoldQuantity *int             `json:"last_period_sold_quantity"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with the required fields
func NewProduct(name, barcode string) (*Product, error) {
	name = strings.TrimSpace(name)
	barcode = strings.TrimSpace(barcode)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Product barcode cannot be empty")
	}

	now := time.Now()
	return &Product{
		ID:        uuid.New(),
		Name:      name,
		Barcode:   barcode,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update replaces the editable fields of the product
func (p *Product) Update(name string, threshold, perCase *int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if perCase != nil && *perCase < 0 {
		return shared.NewDomainError("INVALID_CASE_QUANTITY", "Quantity per case cannot be negative")
	}

	p.Name = name
	p.ThresholdQuantity = threshold
	p.QuantityPerCase = perCase
	p.UpdatedAt = time.Now()
	return nil
}

// CaseQuantity returns the packaging unit size, falling back to 1 when unset
// or invalid so rounding always has a usable case size.
func (p *Product) CaseQuantity() int {
	if p.QuantityPerCase == nil || *p.QuantityPerCase <= 0 {
		return 1
	}
	return *p.QuantityPerCase
}
