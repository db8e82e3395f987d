// Package pricing computes tax breakdowns, discounts and grand totals for
// quotes and invoices.
package pricing

import (
	"fmt"
	"sort"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is the minimal input the engine needs per line item
type Line struct {
	UnitPrice valueobject.Money
	Quantity  int64
	TaxRate   decimal.Decimal
}

// RateTotals is the breakdown of one tax rate group
type RateTotals struct {
	TotalHT     valueobject.Money `json:"totalHt"`
	TotalRemise valueobject.Money `json:"totalRemise"`
	TotalTVA    valueobject.Money `json:"totalTva"`
}

// Totals is the output of Compute
type Totals struct {
	ByRate        map[string]RateTotals `json:"byRate"`
	TotalHT       valueobject.Money     `json:"totalHt"`
	TotalDiscount valueobject.Money     `json:"totalRemise"`
	TotalTaxable  valueobject.Money     `json:"totalNetHt"`
	TotalTax      valueobject.Money     `json:"totalTva"`
	StampDuty     valueobject.Money     `json:"timbreFiscal"`
	GrandTotal    valueobject.Money     `json:"grandTotal"`
}

// Rates returns the rate keys in ascending numeric order
func (t Totals) Rates() []string {
	keys := make([]string, 0, len(t.ByRate))
	for k := range t.ByRate {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := decimal.NewFromString(keys[i])
		b, _ := decimal.NewFromString(keys[j])
		return a.LessThan(b)
	})
	return keys
}

// RateKey is the canonical map key for a tax rate ("19", "5.5")
func RateKey(rate decimal.Decimal) string {
	return rate.String()
}

// Compute groups lines by tax rate and applies discountPercent to each group.
// Amounts are rounded to the minor unit per group, and the scalar totals are
// sums of the rounded group amounts. stampDuty is added once to the grand
// total; pass valueobject.Zero() for quotes.
func Compute(lines []Line, discountPercent decimal.Decimal, stampDuty valueobject.Money) (Totals, error) {
	if err := ValidateDiscountPercent(discountPercent); err != nil {
		return Totals{}, err
	}
	groups, err := groupByRate(lines)
	if err != nil {
		return Totals{}, err
	}
	remises := make([]valueobject.Money, len(groups))
	for i, g := range groups {
		remises[i] = g.base.Round().Sub(g.base.ApplyDiscount(discountPercent).Round())
	}
	return assemble(groups, remises, stampDuty)
}

// ComputeFixed is Compute for a fixed discount amount. The amount is shared
// between the tax groups in proportion to their base, and the rounding
// remainder goes to the largest groups, so the total discount equals the
// amount exactly.
func ComputeFixed(lines []Line, amount valueobject.Money, stampDuty valueobject.Money) (Totals, error) {
	groups, err := groupByRate(lines)
	if err != nil {
		return Totals{}, err
	}
	amount = amount.Round()
	totalHT := valueobject.Zero()
	for _, g := range groups {
		totalHT = totalHT.Add(g.base.Round())
	}
	if amount.IsNegative() || amount.GreaterThan(totalHT) {
		return Totals{}, shared.NewValidationError("discount",
			"fixed discount %s exceeds the total before tax %s", amount.String(), totalHT.String())
	}

	remises := make([]valueobject.Money, len(groups))
	allocated := valueobject.Zero()
	for i, g := range groups {
		if totalHT.IsZero() {
			remises[i] = valueobject.Zero()
			continue
		}
		share := amount.Amount().Mul(g.base.Round().Amount()).Div(totalHT.Amount())
		remises[i] = valueobject.NewMoney(share).Round()
		allocated = allocated.Add(remises[i])
	}

	// Hand out the remainder one minor unit at a time, largest base first,
	// keeping every group discount within 0..base.
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return groups[order[a]].base.GreaterThan(groups[order[b]].base)
	})
	unit := valueobject.NewMoney(decimal.New(1, -valueobject.MinorUnitPlaces))
	for remainder := amount.Sub(allocated); !remainder.IsZero(); {
		step := unit
		if remainder.IsNegative() {
			step = valueobject.Zero().Sub(unit)
		}
		moved := false
		for _, i := range order {
			next := remises[i].Add(step)
			if next.IsNegative() || next.GreaterThan(groups[i].base.Round()) {
				continue
			}
			remises[i] = next
			remainder = remainder.Sub(step)
			moved = true
			if remainder.IsZero() {
				break
			}
		}
		if !moved {
			break
		}
	}
	return assemble(groups, remises, stampDuty)
}

type rateGroup struct {
	key  string
	rate decimal.Decimal
	base valueobject.Money
}

// groupByRate sums unit_price*quantity per tax rate, in ascending rate order
func groupByRate(lines []Line) ([]rateGroup, error) {
	index := make(map[string]int)
	var groups []rateGroup
	for i, l := range lines {
		if err := validateLine(i, l); err != nil {
			return nil, err
		}
		key := RateKey(l.TaxRate)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, rateGroup{key: key, rate: l.TaxRate, base: valueobject.Zero()})
		}
		groups[gi].base = groups[gi].base.Add(l.UnitPrice.MultiplyByInt(l.Quantity))
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].rate.LessThan(groups[b].rate) })
	return groups, nil
}

// assemble applies one discount amount per group and sums the rounded parts
func assemble(groups []rateGroup, remises []valueobject.Money, stampDuty valueobject.Money) (Totals, error) {
	if stampDuty.IsNegative() {
		return Totals{}, shared.NewValidationError("timbre_fiscal", "stamp duty cannot be negative")
	}
	totals := Totals{
		ByRate:        make(map[string]RateTotals, len(groups)),
		TotalHT:       valueobject.Zero(),
		TotalDiscount: valueobject.Zero(),
		TotalTaxable:  valueobject.Zero(),
		TotalTax:      valueobject.Zero(),
		StampDuty:     stampDuty.Round(),
	}
	for i, g := range groups {
		base := g.base.Round()
		remise := remises[i]
		taxable := base.Sub(remise)
		tax := taxable.Percentage(g.rate).Round()

		totals.ByRate[g.key] = RateTotals{TotalHT: base, TotalRemise: remise, TotalTVA: tax}
		totals.TotalHT = totals.TotalHT.Add(base)
		totals.TotalDiscount = totals.TotalDiscount.Add(remise)
		totals.TotalTaxable = totals.TotalTaxable.Add(taxable)
		totals.TotalTax = totals.TotalTax.Add(tax)
	}
	totals.GrandTotal = totals.TotalTaxable.Add(totals.TotalTax).Add(totals.StampDuty)
	return totals, nil
}

// LineAmounts returns the discounted subtotal and the tax-included total of one line
func LineAmounts(l Line, discountPercent decimal.Decimal) (subtotalHT, totalTTC valueobject.Money) {
	subtotalHT = l.UnitPrice.MultiplyByInt(l.Quantity).ApplyDiscount(discountPercent).Round()
	totalTTC = subtotalHT.Add(subtotalHT.Percentage(l.TaxRate)).Round()
	return subtotalHT, totalTTC
}

// ValidateDiscountPercent checks 0 <= d <= 100
func ValidateDiscountPercent(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return shared.NewValidationError("discount", "discount must be between 0 and 100 percent, got %s", d.String())
	}
	return nil
}

func validateLine(i int, l Line) error {
	if l.Quantity < 0 {
		return shared.NewValidationError(lineField(i, "quantity"), "line %d: quantity cannot be negative", i+1)
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewValidationError(lineField(i, "unit_price"), "line %d: unit price cannot be negative", i+1)
	}
	if l.TaxRate.IsNegative() {
		return shared.NewValidationError(lineField(i, "tax_rate"), "line %d: tax rate cannot be negative", i+1)
	}
	return nil
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lines[%d].%s", i, name)
}
