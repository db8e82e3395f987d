package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientSource is the live client data a snapshot is taken from
type ClientSource struct {
	ID      uuid.UUID
	Name    string
	Type    ClientType
	Address string
	Phone   string
	TaxID   string
}

// ProductSource is the live product (or variation) data a snapshot is taken from
type ProductSource struct {
	ProductID     uuid.UUID
	VariationID   *uuid.UUID
	Name          string
	SKU           string
	RegularPrice  valueobject.Money
	SalePrice     valueobject.Money
	StockQuantity int64
	ManageStock   bool
	Image         string
}

// EffectivePrice is the sale price when one is set, the regular price otherwise
func (p ProductSource) EffectivePrice() valueobject.Money {
	if p.SalePrice.IsPositive() {
		return p.SalePrice
	}
	return p.RegularPrice
}

// SnapshotSource resolves live records. Implementations return an error
// matching shared.ErrNotFound when the record does not exist.
type SnapshotSource interface {
	Client(ctx context.Context, id uuid.UUID) (*ClientSource, error)
	Product(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID) (*ProductSource, error)
}

// LineSelection is what a caller picks for one line
type LineSelection struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Quantity    int64
	UnitPrice   *valueobject.Money
	TaxRate     *decimal.Decimal
}

// Snapshot is the frozen client and product data of a document
type Snapshot struct {
	Client ClientSnapshot
	Lines  []LineItem
}

// SnapshotBuilder freezes live client and product data into document snapshots
type SnapshotBuilder struct {
	source SnapshotSource
}

// NewSnapshotBuilder creates a new SnapshotBuilder
func NewSnapshotBuilder(source SnapshotSource) *SnapshotBuilder {
	return &SnapshotBuilder{source: source}
}

// Build resolves the client and every selected product. defaultTaxRate is
// used for lines that do not carry their own rate. Line amounts are left for
// the pricing step.
func (b *SnapshotBuilder) Build(ctx context.Context, clientID uuid.UUID, selections []LineSelection, defaultTaxRate decimal.Decimal) (*Snapshot, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client_id", "client is required")
	}

	client, err := b.source.Client(ctx, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("client", clientID)
		}
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	lines := make([]LineItem, 0, len(selections))
	for i, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "line %d: quantity must be greater than zero", i+1)
		}

		product, err := b.source.Product(ctx, sel.ProductID, sel.VariationID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				if sel.VariationID != nil {
					return nil, shared.NewNotFoundError("product variation", *sel.VariationID)
				}
				return nil, shared.NewNotFoundError("product", sel.ProductID)
			}
			return nil, fmt.Errorf("resolve product %s: %w", sel.ProductID, err)
		}

		lines = append(lines, newLineItem(*product, sel, defaultTaxRate))
	}

	return &Snapshot{
		Client: ClientSnapshot{
			Name:    client.Name,
			Type:    client.Type,
			Address: client.Address,
			Phone:   client.Phone,
			TaxID:   client.TaxID,
		},
		Lines: lines,
	}, nil
}

func newLineItem(p ProductSource, sel LineSelection, defaultTaxRate decimal.Decimal) LineItem {
	price := p.EffectivePrice()
	if sel.UnitPrice != nil {
		price = *sel.UnitPrice
	}
	rate := defaultTaxRate
	if sel.TaxRate != nil {
		rate = *sel.TaxRate
	}

	var variationID *uuid.UUID
	if p.VariationID != nil {
		v := *p.VariationID
		variationID = &v
	}

	return LineItem{
		ProductID:   p.ProductID,
		VariationID: variationID,
		Name:        p.Name,
		Quantity:    sel.Quantity,
		UnitPrice:   price,
		TaxRate:     rate,
		Product: ProductSnapshot{
			SKU:                     p.SKU,
			RegularPrice:            p.RegularPrice,
			SalePrice:               p.SalePrice,
			StockQuantityAtCreation: p.StockQuantity,
			ManageStock:             p.ManageStock,
			Image:                   p.Image,
		},
	}
}
