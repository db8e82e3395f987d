package sales

import (
	"github.com/google/uuid"
)

// StockWarning reports a line asking for more units than are in stock.
// It is advisory and never blocks a write.
type StockWarning struct {
	ProductID         uuid.UUID  `json:"product_id"`
	VariationID       *uuid.UUID `json:"variation_id,omitempty"`
	ProductName       string     `json:"product_name"`
	RequestedQuantity int64      `json:"requested_quantity"`
	CurrentStock      int64      `json:"current_stock"`
	Shortage          int64      `json:"shortage"`
}

// ValidateStock compares requested quantities against the stock captured in
// each line's product snapshot. Quantities of lines sharing a product or
// variation are summed. Re-snapshotting on update captures live stock.
func ValidateStock(lines []LineItem) []StockWarning {
	warnings := make([]StockWarning, 0)
	requested := make(map[uuid.UUID]int64, len(lines))
	var order []uuid.UUID
	first := make(map[uuid.UUID]LineItem, len(lines))

	for _, l := range lines {
		key := l.StockKey()
		if _, seen := first[key]; !seen {
			first[key] = l
			order = append(order, key)
		}
		requested[key] += l.Quantity
	}

	for _, key := range order {
		l := first[key]
		if !l.Product.ManageStock {
			continue
		}
		stock := l.Product.StockQuantityAtCreation
		shortage := requested[key] - stock
		if shortage <= 0 {
			continue
		}
		warnings = append(warnings, StockWarning{
			ProductID:         l.ProductID,
			VariationID:       l.VariationID,
			ProductName:       l.Name,
			RequestedQuantity: requested[key],
			CurrentStock:      stock,
			Shortage:          shortage,
		})
	}
	return warnings
}
