package sales

import (
	"time"

	"github.com/atelier/backend/internal/domain/pricing"
	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// LineInput selects one product (or variation) for a document
type LineInput struct {
	ProductID   uuid.UUID          `json:"product_id" binding:"required"`
	VariationID *uuid.UUID         `json:"variation_id"`
	Quantity    int64              `json:"quantity" binding:"required,gt=0"`
	UnitPrice   *valueobject.Money `json:"unit_price"` // defaults to the effective product price
	TaxRate     *decimal.Decimal   `json:"tax_rate"`   // defaults to the document tax rate
}

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	ClientID     uuid.UUID        `json:"client_id" binding:"required"`
	Lines        []LineInput      `json:"lines" binding:"required,min=1,dive"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType string           `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ValidUntil   *time.Time       `json:"valid_until"`
	Notes        string           `json:"notes" binding:"max=2000"`
	Status       string           `json:"status" binding:"omitempty,oneof=draft active"`
}

// UpdateQuoteRequest represents a request to revise a quote
type UpdateQuoteRequest struct {
	ID           uuid.UUID        `json:"id" binding:"required"`
	ClientID     uuid.UUID        `json:"client_id" binding:"required"`
	Lines        []LineInput      `json:"lines" binding:"required,min=1,dive"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType string           `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ValidUntil   *time.Time       `json:"valid_until"`
	Notes        string           `json:"notes" binding:"max=2000"`
}

// ChangeQuoteStatusRequest represents a quote status transition
type ChangeQuoteStatusRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Status string    `json:"status" binding:"required,oneof=draft active accepted rejected expired"`
}

// PromoteQuoteRequest represents a request to turn an accepted quote into an invoice
type PromoteQuoteRequest struct {
	QuoteID uuid.UUID  `json:"quote_id" binding:"required"`
	DueDate *time.Time `json:"due_date"`
	Notes   string     `json:"notes" binding:"max=2000"`
}

// CreateInvoiceRequest represents a request to create a standalone invoice
type CreateInvoiceRequest struct {
	ClientID     uuid.UUID        `json:"client_id" binding:"required"`
	Lines        []LineInput      `json:"lines" binding:"required,min=1,dive"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType string           `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	DueDate      *time.Time       `json:"due_date"`
	Notes        string           `json:"notes" binding:"max=2000"`
}

// ChangeInvoiceStatusRequest represents an invoice status transition
type ChangeInvoiceStatusRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Status string    `json:"status" binding:"required,oneof=draft sent paid overdue"`
}

// ListFilter selects a page of quotes or invoices
type ListFilter struct {
	Page     int        `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize int        `json:"page_size" form:"page_size" binding:"omitempty,min=1,max=500"`
	Search   string     `json:"search" form:"search"`
	Status   string     `json:"status" form:"status"`
	ClientID *uuid.UUID `json:"client_id" form:"-"`
	OrderBy  string     `json:"order_by" form:"order_by"`
	OrderDir string     `json:"order_dir" form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f ListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
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
	if f.Status != "" {
		filter = filter.Where("status", f.Status)
	}
	if f.ClientID != nil {
		filter = filter.Where("client_id", *f.ClientID)
	}
	return filter
}

func toSelections(lines []LineInput) []sales.LineSelection {
	out := make([]sales.LineSelection, len(lines))
	for i, l := range lines {
		out[i] = sales.LineSelection{
			ProductID:   l.ProductID,
			VariationID: l.VariationID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		}
	}
	return out
}

func toDiscount(value decimal.Decimal, discountType string) pricing.Discount {
	if discountType == "" {
		discountType = string(pricing.DiscountPercentage)
	}
	return pricing.Discount{Type: pricing.DiscountType(discountType), Value: value}
}

// ==================== Responses ====================

// TotalsResponse carries the stored totals of a document
type TotalsResponse struct {
	THT          valueobject.Money             `json:"tht"`
	TotalRemise  valueobject.Money             `json:"total_remise"`
	TotalTVA     valueobject.Money             `json:"total_tva"`
	TTC          valueobject.Money             `json:"ttc"`
	TaxBreakdown map[string]pricing.RateTotals `json:"tax_breakdown,omitempty"` // keyed by canonical rate
}

func toTotalsResponse(t sales.DocumentTotals, lines []sales.LineItem, discount pricing.Discount, stamp valueobject.Money) TotalsResponse {
	resp := TotalsResponse{THT: t.THT, TotalRemise: t.TotalRemise, TotalTVA: t.TotalTVA, TTC: t.TTC}
	// Stored documents were priced on save, so a failure here only drops the breakdown.
	if breakdown, err := sales.Breakdown(lines, discount, stamp); err == nil {
		resp.TaxBreakdown = breakdown.ByRate
	}
	return resp
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID             uuid.UUID            `json:"id"`
	Ref            string               `json:"ref"`
	ClientID       uuid.UUID            `json:"client_id"`
	ClientSnapshot sales.ClientSnapshot `json:"client_snapshot"`
	Lines          []sales.LineItem     `json:"products_snapshot"`
	DiscountType   pricing.DiscountType `json:"discount_type"`
	Discount       decimal.Decimal      `json:"discount"`
	TaxRate        decimal.Decimal      `json:"tax_rate"`
	Status         sales.QuoteStatus    `json:"status"`
	ValidUntil     *time.Time           `json:"valid_until,omitempty"`
	TotalsResponse
	Notes     string    `json:"notes"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToQuoteResponse converts a domain Quote to its response
func ToQuoteResponse(q *sales.Quote) QuoteResponse {
	return QuoteResponse{
		ID:             q.ID,
		Ref:            q.Ref,
		ClientID:       q.ClientID,
		ClientSnapshot: q.ClientSnapshot,
		Lines:          q.Lines,
		DiscountType:   q.DiscountType,
		Discount:       q.Discount,
		TaxRate:        q.TaxRate,
		Status:         q.Status,
		ValidUntil:     q.ValidUntil,
		TotalsResponse: toTotalsResponse(q.DocumentTotals, q.Lines, pricing.Discount{Type: q.DiscountType, Value: q.Discount}, valueobject.Zero()),
		Notes:          q.Notes,
		Version:        q.Version,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

// QuoteResult is a saved quote plus the advisory stock warnings of its lines
type QuoteResult struct {
	Quote         QuoteResponse        `json:"quote"`
	StockWarnings []sales.StockWarning `json:"stockWarnings"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID            `json:"id"`
	Ref            string               `json:"ref"`
	QuoteID        *uuid.UUID           `json:"quote_id,omitempty"`
	ClientID       uuid.UUID            `json:"client_id"`
	ClientSnapshot sales.ClientSnapshot `json:"client_snapshot"`
	Lines          []sales.LineItem     `json:"products_snapshot"`
	DiscountType   pricing.DiscountType `json:"discount_type"`
	Discount       decimal.Decimal      `json:"discount"`
	TaxRate        decimal.Decimal      `json:"tax_rate"`
	TimbreFiscal   valueobject.Money    `json:"timbre_fiscal"`
	Status         sales.InvoiceStatus  `json:"status"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	IsOverdue      bool                 `json:"is_overdue"`
	TotalsResponse
	Notes     string     `json:"notes"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to its response.
// IsOverdue is derived at now, before the sweep has marked the invoice.
func ToInvoiceResponse(i *sales.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:             i.ID,
		Ref:            i.Ref,
		QuoteID:        i.QuoteID,
		ClientID:       i.ClientID,
		ClientSnapshot: i.ClientSnapshot,
		Lines:          i.Lines,
		DiscountType:   i.DiscountType,
		Discount:       i.Discount,
		TaxRate:        i.TaxRate,
		TimbreFiscal:   i.TimbreFiscal,
		Status:         i.Status,
		DueDate:        i.DueDate,
		IsOverdue:      i.Status == sales.InvoiceStatusOverdue || i.IsOverdueAt(now),
		TotalsResponse: toTotalsResponse(i.DocumentTotals, i.Lines, pricing.Discount{Type: i.DiscountType, Value: i.Discount}, i.TimbreFiscal),
		Notes:          i.Notes,
		PaidAt:         i.PaidAt,
		Version:        i.Version,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// InvoiceResult is a saved invoice plus the advisory stock warnings of its lines
type InvoiceResult struct {
	Invoice       InvoiceResponse      `json:"invoice"`
	StockWarnings []sales.StockWarning `json:"stockWarnings"`
}

// SweepResult reports how many invoices an overdue sweep marked
type SweepResult struct {
	Marked int `json:"marked"`
}

// ExpiryResult reports how many quotes an expiry run closed
type ExpiryResult struct {
	Expired int `json:"expired"`
}
