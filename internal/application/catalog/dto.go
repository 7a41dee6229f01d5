package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklink/backend/internal/domain/catalog"
)

// CreateProductRequest represents the data needed to create a product
type CreateProductRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Barcode           string `json:"barcode" binding:"required,max=50"`
	ThresholdQuantity *int   `json:"threshold_quantity" binding:"omitempty,min=0"`
	QuantityPerCase   *int   `json:"quantity_per_case" binding:"omitempty,min=0"`
}

// UpdateProductRequest represents the editable fields of a product
type UpdateProductRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	ThresholdQuantity *int   `json:"threshold_quantity" binding:"omitempty,min=0"`
	QuantityPerCase   *int   `json:"quantity_per_case" binding:"omitempty,min=0"`
}

// ProductResponse represents product data in API responses
type ProductResponse struct {
	ID                     uuid.UUID        `json:"id"`
	Name                   string           `json:"name"`
	Barcode                string           `json:"barcode"`
	ThresholdQuantity      *int             `json:"threshold_quantity"`
	QuantityPerCase        *int             `json:"quantity_per_case"`
	Price                  *decimal.Decimal `json:"price"`
	AvailableQuantity      *int             `json:"available_quantity"`
	LastPeriodSoldQuantity *int             `json:"last_period_sold_quantity"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                     p.ID,
		Name:                   p.Name,
		Barcode:                p.Barcode,
		ThresholdQuantity:      p.ThresholdQuantity,
		QuantityPerCase:        p.QuantityPerCase,
		Price:                  p.Price,
		AvailableQuantity:      p.AvailableQuantity,
		LastPeriodSoldQuantity: p.LastPeriodSoldQuantity,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// StoreCredentialRequest carries one storefront slot in a settings update
type StoreCredentialRequest struct {
	URL         string `json:"url" binding:"omitempty,max=255"`
	AccessToken string `json:"access_token" binding:"omitempty,max=255"`
	LocationID  string `json:"location_id" binding:"omitempty,max=255"`
}

// UpdateSettingsRequest represents a full settings update
type UpdateSettingsRequest struct {
	Store1 StoreCredentialRequest `json:"store1"`
	Store2 StoreCredentialRequest `json:"store2"`
	Store3 StoreCredentialRequest `json:"store3"`
	Store4 StoreCredentialRequest `json:"store4"`
	Store5 StoreCredentialRequest `json:"store5"`
	Store6 StoreCredentialRequest `json:"store6"`

	ExcludedSKUs     string `json:"excluded_skus"`
	SalesOrderTag    string `json:"sales_order_tag" binding:"omitempty,max=100"`
	SalesLookbackDay int    `json:"sales_lookback_days" binding:"omitempty,min=1,max=365"`
}

// SettingsResponse represents settings data in API responses
type SettingsResponse struct {
	Store1 catalog.StoreCredential `json:"store1"`
	Store2 catalog.StoreCredential `json:"store2"`
	Store3 catalog.StoreCredential `json:"store3"`
	Store4 catalog.StoreCredential `json:"store4"`
	Store5 catalog.StoreCredential `json:"store5"`
	Store6 catalog.StoreCredential `json:"store6"`

	ExcludedSKUs     string `json:"excluded_skus"`
	SalesOrderTag    string `json:"sales_order_tag"`
	SalesLookbackDay int    `json:"sales_lookback_days"`
}

// ToSettingsResponse converts domain settings to a response DTO
func ToSettingsResponse(s *catalog.Settings) SettingsResponse {
	return SettingsResponse{
		Store1:           s.Store1,
		Store2:           s.Store2,
		Store3:           s.Store3,
		Store4:           s.Store4,
		Store5:           s.Store5,
		Store6:           s.Store6,
		ExcludedSKUs:     s.ExcludedSKUs,
		SalesOrderTag:    s.SalesOrderTag,
		SalesLookbackDay: s.SalesLookbackDay,
	}
}

func toCredential(r StoreCredentialRequest) catalog.StoreCredential {
	return catalog.StoreCredential{
		URL:         r.URL,
		AccessToken: r.AccessToken,
		LocationID:  r.LocationID,
	}
}
