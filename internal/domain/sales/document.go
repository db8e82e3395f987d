package sales

import (
	"github.com/atelier/backend/internal/domain/pricing"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientType distinguishes private persons from companies
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

// IsValid checks if the client type is known
func (t ClientType) IsValid() bool {
	return t == ClientTypeIndividual || t == ClientTypeCompany
}

// ClientSnapshot is the client as it was when the document was created.
// It is never updated afterwards.
type ClientSnapshot struct {
	Name    string     `json:"name"`
	Type    ClientType `json:"type"`
	Address string     `json:"address"`
	Phone   string     `json:"phone"`
	TaxID   string     `json:"tax_id"`
}

// ProductSnapshot is the product or variation as it was when the document was created
type ProductSnapshot struct {
	SKU                     string            `json:"sku"`
	RegularPrice            valueobject.Money `json:"regular_price"`
	SalePrice               valueobject.Money `json:"sale_price"`
	StockQuantityAtCreation int64             `json:"stock_quantity_at_creation"`
	ManageStock             bool              `json:"manage_stock"`
	Image                   string            `json:"image,omitempty"`
}

// LineItem is one priced line of a quote or invoice
type LineItem struct {
	ProductID   uuid.UUID         `json:"product_id"`
	VariationID *uuid.UUID        `json:"variation_id,omitempty"`
	Name        string            `json:"name"`
	Quantity    int64             `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	SubtotalHT  valueobject.Money `json:"line_subtotal_ht"`
	TotalTTC    valueobject.Money `json:"line_total_ttc"`
	Product     ProductSnapshot   `json:"product"`
}

// StockKey identifies the stock-carrying record of the line
func (l LineItem) StockKey() uuid.UUID {
	if l.VariationID != nil {
		return *l.VariationID
	}
	return l.ProductID
}

func (l LineItem) pricingLine() pricing.Line {
	return pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity, TaxRate: l.TaxRate}
}

// DocumentTotals are the persisted totals of a document
type DocumentTotals struct {
	THT         valueobject.Money
	TotalRemise valueobject.Money
	TotalTVA    valueobject.Money
	TTC         valueobject.Money
}

func totalsFrom(t pricing.Totals) DocumentTotals {
	return DocumentTotals{
		THT:         t.TotalHT,
		TotalRemise: t.TotalDiscount,
		TotalTVA:    t.TotalTax,
		TTC:         t.GrandTotal,
	}
}

// priceLines computes the document totals and writes the per-line amounts back into lines
func priceLines(lines []LineItem, discount pricing.Discount, stamp valueobject.Money) (DocumentTotals, error) {
	in := make([]pricing.Line, len(lines))
	for i, l := range lines {
		in[i] = l.pricingLine()
	}
	totals, pct, err := pricing.ComputeWithDiscount(in, discount, stamp)
	if err != nil {
		return DocumentTotals{}, err
	}
	for i := range lines {
		lines[i].SubtotalHT, lines[i].TotalTTC = pricing.LineAmounts(in[i], pct)
	}
	return totalsFrom(totals), nil
}

// Breakdown recomputes the per-rate breakdown of a document for display
func Breakdown(lines []LineItem, discount pricing.Discount, stamp valueobject.Money) (pricing.Totals, error) {
	in := make([]pricing.Line, len(lines))
	for i, l := range lines {
		in[i] = l.pricingLine()
	}
	totals, _, err := pricing.ComputeWithDiscount(in, discount, stamp)
	return totals, err
}

func cloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return nil
	}
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = l
		if l.VariationID != nil {
			v := *l.VariationID
			out[i].VariationID = &v
		}
	}
	return out
}
