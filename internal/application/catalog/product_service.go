package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/stocklink/backend/internal/domain/catalog"
	"github.com/stocklink/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	barcode := strings.TrimSpace(req.Barcode)
	if barcode != "" {
		existing, err := s.productRepo.FindByBarcode(ctx, barcode)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this barcode already exists")
		}
	}

	product, err := catalog.NewProduct(req.Name, req.Barcode)
	if err != nil {
		return nil, err
	}
	product.ThresholdQuantity = req.ThresholdQuantity
	if req.QuantityPerCase != nil && *req.QuantityPerCase < 0 {
		return nil, shared.NewDomainError("INVALID_CASE_QUANTITY", "Quantity per case cannot be negative")
	}
	product.QuantityPerCase = req.QuantityPerCase

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves every product in stable name order
func (s *ProductService) List(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update replaces the editable fields of a product
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.ThresholdQuantity, req.QuantityPerCase); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	return s.productRepo.Delete(ctx, productID)
}

// DeleteAll removes every product and returns the number deleted
func (s *ProductService) DeleteAll(ctx context.Context) (int64, error) {
	return s.productRepo.DeleteAll(ctx)
}

// ClearColumn resets one synchronized column to null for every product and
// returns the number of rows touched.
func (s *ProductService) ClearColumn(ctx context.Context, field string) (int64, error) {
	syncField := catalog.SyncField(field)
	if !syncField.Valid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "Unknown column: "+field)
	}
	return s.productRepo.ClearField(ctx, syncField)
}
