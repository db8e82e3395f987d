package sales

import (
	"context"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/partner"
	"github.com/atelier/backend/internal/domain/sales"
	"github.com/google/uuid"
)

// CatalogSnapshotSource resolves live clients and products for the snapshot
// builder from the partner and catalog contexts.
type CatalogSnapshotSource struct {
	clients  partner.ClientRepository
	products catalog.ProductRepository
}

// NewCatalogSnapshotSource creates a new CatalogSnapshotSource
func NewCatalogSnapshotSource(clients partner.ClientRepository, products catalog.ProductRepository) *CatalogSnapshotSource {
	return &CatalogSnapshotSource{clients: clients, products: products}
}

// Client implements sales.SnapshotSource
func (s *CatalogSnapshotSource) Client(ctx context.Context, id uuid.UUID) (*sales.ClientSource, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sales.ClientSource{
		ID:      c.ID,
		Name:    c.Name,
		Type:    sales.ClientType(c.Type),
		Address: c.Address,
		Phone:   c.Phone,
		TaxID:   c.TaxID,
	}, nil
}

// Product implements sales.SnapshotSource. A variation inherits the name of
// its product, suffixed with its attribute options.
func (s *CatalogSnapshotSource) Product(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID) (*sales.ProductSource, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if variationID == nil {
		return &sales.ProductSource{
			ProductID:     p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			RegularPrice:  p.RegularPrice,
			SalePrice:     p.SalePrice,
			StockQuantity: p.StockQuantity,
			ManageStock:   p.ManageStock,
			Image:         p.Image,
		}, nil
	}

	v, err := s.products.FindVariation(ctx, productID, *variationID)
	if err != nil {
		return nil, err
	}
	name := p.Name
	if label := v.Label(); label != "" {
		name += " - " + label
	}
	image := v.Image
	if image == "" {
		image = p.Image
	}
	id := v.ID
	return &sales.ProductSource{
		ProductID:     p.ID,
		VariationID:   &id,
		Name:          name,
		SKU:           v.SKU,
		RegularPrice:  v.RegularPrice,
		SalePrice:     v.SalePrice,
		StockQuantity: v.StockQuantity,
		ManageStock:   v.ManageStock,
		Image:         image,
	}, nil
}

var _ sales.SnapshotSource = (*CatalogSnapshotSource)(nil)
