package pricing

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType tells how a document discount value is expressed
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Discount is a document level discount
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Percent converts the discount to a percentage of totalHT.
// A fixed discount becomes its share of totalHT, used for per-line amounts.
func (d Discount) Percent(totalHT valueobject.Money) (decimal.Decimal, error) {
	if d.Value.IsNegative() {
		return decimal.Zero, shared.NewValidationError("discount", "discount cannot be negative")
	}
	if !d.Value.Equal(d.Value.Truncate(valueobject.MinorUnitPlaces)) {
		return decimal.Zero, shared.NewValidationError("discount",
			"discount allows at most %d decimal places", valueobject.MinorUnitPlaces)
	}
	switch d.Type {
	case DiscountPercentage, "":
		if err := ValidateDiscountPercent(d.Value); err != nil {
			return decimal.Zero, err
		}
		return d.Value, nil
	case DiscountFixed:
		if d.Value.IsZero() {
			return decimal.Zero, nil
		}
		if totalHT.IsZero() || d.Value.GreaterThan(totalHT.Amount()) {
			return decimal.Zero, shared.NewValidationError("discount",
				"fixed discount %s exceeds the total before tax %s", d.Value.StringFixed(valueobject.MinorUnitPlaces), totalHT.String())
		}
		return d.Value.Mul(hundred).DivRound(totalHT.Amount(), 8), nil
	default:
		return decimal.Zero, shared.NewValidationError("discount_type", "unknown discount type %q", string(d.Type))
	}
}

// GrossHT returns Σ unit_price*quantity before any discount
func GrossHT(lines []Line) valueobject.Money {
	total := valueobject.Zero()
	for _, l := range lines {
		total = total.Add(l.UnitPrice.MultiplyByInt(l.Quantity))
	}
	return total
}

// ComputeWithDiscount resolves d against the lines and computes the totals.
// The returned percentage is the one used for per-line amounts; a fixed
// discount is applied to the totals as an exact amount.
func ComputeWithDiscount(lines []Line, d Discount, stampDuty valueobject.Money) (Totals, decimal.Decimal, error) {
	for i, l := range lines {
		if err := validateLine(i, l); err != nil {
			return Totals{}, decimal.Zero, err
		}
	}
	pct, err := d.Percent(GrossHT(lines))
	if err != nil {
		return Totals{}, decimal.Zero, err
	}
	var totals Totals
	if d.Type == DiscountFixed {
		totals, err = ComputeFixed(lines, valueobject.NewMoney(d.Value), stampDuty)
	} else {
		totals, err = Compute(lines, pct, stampDuty)
	}
	if err != nil {
		return Totals{}, decimal.Zero, err
	}
	return totals, pct, nil
}
