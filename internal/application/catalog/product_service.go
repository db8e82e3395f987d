package catalog

import (
	"context"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new simple product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.SKU, req.RegularPrice)
	if err != nil {
		return nil, err
	}

	sale := valueobject.Zero()
	if req.SalePrice != nil {
		sale = *req.SalePrice
	}
	if err := product.SetPrices(req.RegularPrice, sale); err != nil {
		return nil, err
	}
	if req.Status != "" {
		product.Status = catalog.ProductStatus(req.Status)
	}
	if req.ManageStock {
		product.SetStock(req.StockQuantity)
	}
	product.Description = req.Description
	product.Image = req.Image
	product.CategoryIDs = req.CategoryIDs
	product.TagIDs = req.TagIDs

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product with its variations
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductDetailResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	variations, err := s.productRepo.ListVariations(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ProductDetailResponse{
		ProductResponse: ToProductResponse(product),
		Variations:      make([]VariationResponse, len(variations)),
	}
	for i := range variations {
		resp.Variations[i] = ToVariationResponse(&variations[i])
	}
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.GetAll(ctx, filter.toDomain("name"))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// ListVariations lists the variations of a product
func (s *ProductService) ListVariations(ctx context.Context, productID uuid.UUID) ([]VariationResponse, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	variations, err := s.productRepo.ListVariations(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]VariationResponse, len(variations))
	for i := range variations {
		responses[i] = ToVariationResponse(&variations[i])
	}
	return responses, nil
}

// Update updates an existing product
func (s *ProductService) Update(ctx context.Context, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "name is required")
		}
		product.Name = name
		product.Slug = catalog.Slugify(name)
	}
	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Status != nil {
		product.Status = catalog.ProductStatus(*req.Status)
		if !product.Status.IsValid() {
			return nil, shared.NewValidationError("status", "unknown product status %q", *req.Status)
		}
	}
	if req.RegularPrice != nil || req.SalePrice != nil {
		regular, sale := product.RegularPrice, product.SalePrice
		if req.RegularPrice != nil {
			regular = *req.RegularPrice
		}
		if req.SalePrice != nil {
			sale = *req.SalePrice
		}
		if err := product.SetPrices(regular, sale); err != nil {
			return nil, err
		}
	}
	if req.ManageStock != nil {
		product.ManageStock = *req.ManageStock
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.CategoryIDs != nil {
		product.CategoryIDs = req.CategoryIDs
	}
	if req.TagIDs != nil {
		product.TagIDs = req.TagIDs
	}
	product.Touch()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete deletes a product and its variations
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// DeleteMany deletes several products at once
func (s *ProductService) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, shared.NewValidationError("ids", "at least one id is required")
	}
	return s.productRepo.DeleteMany(ctx, ids)
}
