package catalog

import (
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name          string             `json:"name" binding:"required,min=1,max=200"`
	SKU           string             `json:"sku" binding:"max=100"`
	Description   string             `json:"description" binding:"max=5000"`
	Status        string             `json:"status" binding:"omitempty,oneof=publish draft pending private"`
	RegularPrice  valueobject.Money  `json:"regular_price"`
	SalePrice     *valueobject.Money `json:"sale_price"`
	ManageStock   bool               `json:"manage_stock"`
	StockQuantity int64              `json:"stock_quantity"`
	Image         string             `json:"image" binding:"omitempty,max=500"`
	CategoryIDs   []int64            `json:"category_ids"`
	TagIDs        []int64            `json:"tag_ids"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	ID            uuid.UUID          `json:"id" binding:"required"`
	Name          *string            `json:"name" binding:"omitempty,min=1,max=200"`
	SKU           *string            `json:"sku" binding:"omitempty,max=100"`
	Description   *string            `json:"description" binding:"omitempty,max=5000"`
	Status        *string            `json:"status" binding:"omitempty,oneof=publish draft pending private"`
	RegularPrice  *valueobject.Money `json:"regular_price"`
	SalePrice     *valueobject.Money `json:"sale_price"`
	ManageStock   *bool              `json:"manage_stock"`
	StockQuantity *int64             `json:"stock_quantity"`
	Image         *string            `json:"image" binding:"omitempty,max=500"`
	CategoryIDs   []int64            `json:"category_ids"`
	TagIDs        []int64            `json:"tag_ids"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID             `json:"id"`
	RemoteID      *int64                `json:"remote_id,omitempty"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug"`
	SKU           string                `json:"sku"`
	Type          catalog.ProductType   `json:"type"`
	Status        catalog.ProductStatus `json:"status"`
	Description   string                `json:"description"`
	RegularPrice  valueobject.Money     `json:"regular_price"`
	SalePrice     valueobject.Money     `json:"sale_price"`
	Price         valueobject.Money     `json:"price"`
	ManageStock   bool                  `json:"manage_stock"`
	StockQuantity int64                 `json:"stock_quantity"`
	Image         string                `json:"image"`
	CategoryIDs   []int64               `json:"category_ids"`
	TagIDs        []int64               `json:"tag_ids"`
	SyncedAt      *time.Time            `json:"synced_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// VariationResponse represents a product variation in API responses
type VariationResponse struct {
	ID            uuid.UUID                    `json:"id"`
	ProductID     uuid.UUID                    `json:"product_id"`
	RemoteID      *int64                       `json:"remote_id,omitempty"`
	SKU           string                       `json:"sku"`
	Label         string                       `json:"label"`
	RegularPrice  valueobject.Money            `json:"regular_price"`
	SalePrice     valueobject.Money            `json:"sale_price"`
	ManageStock   bool                         `json:"manage_stock"`
	StockQuantity int64                        `json:"stock_quantity"`
	Image         string                       `json:"image"`
	Attributes    []catalog.VariationAttribute `json:"attributes"`
}

// ProductDetailResponse is a product with its variations
type ProductDetailResponse struct {
	ProductResponse
	Variations []VariationResponse `json:"variations"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		RemoteID:      p.RemoteID,
		Name:          p.Name,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Type:          p.Type,
		Status:        p.Status,
		Description:   p.Description,
		RegularPrice:  p.RegularPrice,
		SalePrice:     p.SalePrice,
		Price:         p.EffectivePrice(),
		ManageStock:   p.ManageStock,
		StockQuantity: p.StockQuantity,
		Image:         p.Image,
		CategoryIDs:   nonNil(p.CategoryIDs),
		TagIDs:        nonNil(p.TagIDs),
		SyncedAt:      p.SyncedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToVariationResponse converts a domain Variation to VariationResponse
func ToVariationResponse(v *catalog.Variation) VariationResponse {
	attrs := []catalog.VariationAttribute(v.Attributes)
	if attrs == nil {
		attrs = []catalog.VariationAttribute{}
	}
	return VariationResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		RemoteID:      v.RemoteID,
		SKU:           v.SKU,
		Label:         v.Label(),
		RegularPrice:  v.RegularPrice,
		SalePrice:     v.SalePrice,
		ManageStock:   v.ManageStock,
		StockQuantity: v.StockQuantity,
		Image:         v.Image,
		Attributes:    attrs,
	}
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description" binding:"max=2000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Image       string     `json:"image" binding:"omitempty,max=500"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	ID          uuid.UUID  `json:"id" binding:"required"`
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Image       *string    `json:"image" binding:"omitempty,max=500"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	RemoteID    *int64     `json:"remote_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Description string     `json:"description"`
	Count       int        `json:"count"`
	Image       string     `json:"image"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		RemoteID:    c.RemoteID,
		Name:        c.Name,
		Slug:        c.Slug,
		ParentID:    c.ParentID,
		Description: c.Description,
		Count:       c.Count,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Attributes and terms
// ---------------------------------------------------------------------------

// CreateAttributeRequest represents a request to create an attribute
type CreateAttributeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=100"`
	OrderBy     string `json:"order_by" binding:"omitempty,oneof=menu_order name name_num id"`
	HasArchives bool   `json:"has_archives"`
}

// UpdateAttributeRequest represents a request to update an attribute
type UpdateAttributeRequest struct {
	ID          uuid.UUID `json:"id" binding:"required"`
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string   `json:"slug" binding:"omitempty,max=100"`
	OrderBy     *string   `json:"order_by" binding:"omitempty,oneof=menu_order name name_num id"`
	HasArchives *bool     `json:"has_archives"`
}

// AttributeResponse represents an attribute in API responses
type AttributeResponse struct {
	ID          uuid.UUID  `json:"id"`
	RemoteID    *int64     `json:"remote_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Type        string     `json:"type"`
	OrderBy     string     `json:"order_by"`
	HasArchives bool       `json:"has_archives"`
	NeedsPush   bool       `json:"needs_push"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToAttributeResponse converts a domain Attribute to AttributeResponse
func ToAttributeResponse(a *catalog.Attribute) AttributeResponse {
	return AttributeResponse{
		ID:          a.ID,
		RemoteID:    a.RemoteID,
		Name:        a.Name,
		Slug:        a.Slug,
		Type:        a.Type,
		OrderBy:     a.OrderBy,
		HasArchives: a.HasArchives,
		NeedsPush:   a.NeedsPush(),
		SyncedAt:    a.SyncedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// CreateTermRequest represents a request to create an attribute term
type CreateTermRequest struct {
	AttributeID uuid.UUID `json:"attribute_id" binding:"required"`
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	Slug        string    `json:"slug" binding:"omitempty,max=100"`
	Description string    `json:"description" binding:"max=2000"`
	MenuOrder   int       `json:"menu_order" binding:"min=0"`
}

// UpdateTermRequest represents a request to update an attribute term
type UpdateTermRequest struct {
	ID          uuid.UUID `json:"id" binding:"required"`
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string   `json:"slug" binding:"omitempty,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	MenuOrder   *int      `json:"menu_order" binding:"omitempty,min=0"`
}

// TermResponse represents an attribute term in API responses
type TermResponse struct {
	ID          uuid.UUID  `json:"id"`
	AttributeID uuid.UUID  `json:"attribute_id"`
	RemoteID    *int64     `json:"remote_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	MenuOrder   int        `json:"menu_order"`
	NeedsPush   bool       `json:"needs_push"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// ToTermResponse converts a domain Term to TermResponse
func ToTermResponse(t *catalog.Term) TermResponse {
	return TermResponse{
		ID:          t.ID,
		AttributeID: t.AttributeID,
		RemoteID:    t.RemoteID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		MenuOrder:   t.MenuOrder,
		NeedsPush:   t.NeedsPush(),
		SyncedAt:    t.SyncedAt,
	}
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

// CreateTagRequest represents a request to create a tag
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateTagRequest represents a request to update a tag
type UpdateTagRequest struct {
	ID          uuid.UUID `json:"id" binding:"required"`
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string   `json:"slug" binding:"omitempty,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID          uuid.UUID  `json:"id"`
	RemoteID    *int64     `json:"remote_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Count       int        `json:"count"`
	NeedsPush   bool       `json:"needs_push"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// ToTagResponse converts a domain Tag to TagResponse
func ToTagResponse(t *catalog.Tag) TagResponse {
	return TagResponse{
		ID:          t.ID,
		RemoteID:    t.RemoteID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Count:       t.Count,
		NeedsPush:   t.NeedsPush(),
		SyncedAt:    t.SyncedAt,
	}
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

// ListFilter selects a page of catalog records. Filters holds equality
// filters; columns outside the repository whitelist are rejected there.
type ListFilter struct {
	Page     int            `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize int            `json:"page_size" form:"page_size" binding:"omitempty,min=1,max=500"`
	Search   string         `json:"search" form:"search"`
	OrderBy  string         `json:"order_by" form:"order_by"`
	OrderDir string         `json:"order_dir" form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Filters  map[string]any `json:"filters"`
}

func (f ListFilter) toDomain(defaultOrder string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = defaultOrder
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	for k, v := range f.Filters {
		filter = filter.Where(k, v)
	}
	return filter
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
