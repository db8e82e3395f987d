package catalog

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProductType mirrors the remote catalog product types
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
)

// ProductStatus mirrors the remote publication status
type ProductStatus string

const (
	ProductStatusPublish ProductStatus = "publish"
	ProductStatusDraft   ProductStatus = "draft"
	ProductStatusPending ProductStatus = "pending"
	ProductStatusPrivate ProductStatus = "private"
)

// IsValid checks if the status is known
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusPublish, ProductStatusDraft, ProductStatusPending, ProductStatusPrivate:
		return true
	}
	return false
}

// Product represents a sellable item of the catalog
type Product struct {
	shared.BaseEntity
	RemoteID      *int64                     `gorm:"uniqueIndex" json:"remote_id,omitempty"`
	Name          string                     `gorm:"type:varchar(200);not null" json:"name"`
	Slug          string                     `gorm:"type:varchar(200);index" json:"slug"`
	SKU           string                     `gorm:"type:varchar(100);index" json:"sku"`
	Type          ProductType                `gorm:"type:varchar(20);not null;default:'simple'" json:"type"`
	Status        ProductStatus              `gorm:"type:varchar(20);not null;default:'publish'" json:"status"`
	Description   string                     `gorm:"type:text" json:"description"`
	RegularPrice  valueobject.Money          `gorm:"type:decimal(18,3);not null;default:0" json:"regular_price"`
	SalePrice     valueobject.Money          `gorm:"type:decimal(18,3);not null;default:0" json:"sale_price"`
	ManageStock   bool                       `gorm:"not null;default:false" json:"manage_stock"`
	StockQuantity int64                      `gorm:"not null;default:0" json:"stock_quantity"`
	Image         string                     `gorm:"type:varchar(500)" json:"image"`
	CategoryIDs   datatypes.JSONSlice[int64] `json:"category_ids"`
	TagIDs        datatypes.JSONSlice[int64] `json:"tag_ids"`
	SyncedAt      *time.Time                 `json:"synced_at,omitempty"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new simple product
func NewProduct(name, sku string, regular valueobject.Money) (*Product, error) {
	if err := validateName("name", name, 200); err != nil {
		return nil, err
	}
	p := &Product{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         strings.TrimSpace(name),
		Slug:         Slugify(name),
		SKU:          strings.TrimSpace(sku),
		Type:         ProductTypeSimple,
		Status:       ProductStatusPublish,
		RegularPrice: valueobject.Zero(),
		SalePrice:    valueobject.Zero(),
	}
	if err := p.SetPrices(regular, valueobject.Zero()); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPrices sets the regular and sale prices. A zero sale price means no sale.
func (p *Product) SetPrices(regular, sale valueobject.Money) error {
	if regular.IsNegative() {
		return shared.NewValidationError("regular_price", "regular price cannot be negative")
	}
	if sale.IsNegative() {
		return shared.NewValidationError("sale_price", "sale price cannot be negative")
	}
	if sale.IsPositive() && sale.GreaterThan(regular) {
		return shared.NewValidationError("sale_price", "sale price cannot exceed the regular price")
	}
	p.RegularPrice = regular
	p.SalePrice = sale
	p.Touch()
	return nil
}

// SetStock enables stock management with the given quantity
func (p *Product) SetStock(quantity int64) {
	p.ManageStock = true
	p.StockQuantity = quantity
	p.Touch()
}

// EffectivePrice is the sale price when set, the regular price otherwise
func (p *Product) EffectivePrice() valueobject.Money {
	if p.SalePrice.IsPositive() {
		return p.SalePrice
	}
	return p.RegularPrice
}

// VariationAttribute is one attribute/option pair of a variation
type VariationAttribute struct {
	RemoteAttributeID int64  `json:"id"`
	Name              string `json:"name"`
	Option            string `json:"option"`
}

// Variation is a purchasable variant of a variable product
type Variation struct {
	shared.BaseEntity
	ProductID     uuid.UUID                               `gorm:"type:uuid;not null;index" json:"product_id"`
	RemoteID      *int64                                  `gorm:"uniqueIndex" json:"remote_id,omitempty"`
	SKU           string                                  `gorm:"type:varchar(100);index" json:"sku"`
	RegularPrice  valueobject.Money                       `gorm:"type:decimal(18,3);not null;default:0" json:"regular_price"`
	SalePrice     valueobject.Money                       `gorm:"type:decimal(18,3);not null;default:0" json:"sale_price"`
	ManageStock   bool                                    `gorm:"not null;default:false" json:"manage_stock"`
	StockQuantity int64                                   `gorm:"not null;default:0" json:"stock_quantity"`
	Image         string                                  `gorm:"type:varchar(500)" json:"image"`
	Attributes    datatypes.JSONSlice[VariationAttribute] `json:"attributes"`
}

// TableName returns the table name for GORM
func (Variation) TableName() string {
	return "product_variations"
}

// Label joins the attribute options, e.g. "Blue / Large"
func (v *Variation) Label() string {
	opts := make([]string, 0, len(v.Attributes))
	for _, a := range v.Attributes {
		opts = append(opts, a.Option)
	}
	return strings.Join(opts, " / ")
}
