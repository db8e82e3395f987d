package sales

import (
	"time"

	"github.com/atelier/backend/internal/domain/pricing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusPaid
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid:
		return false // Terminal
	}
	return false
}

// Invoice is the aggregate root of a billed document
type Invoice struct {
	shared.BaseAggregateRoot
	Ref            string
	QuoteID        *uuid.UUID
	ClientID       uuid.UUID
	ClientSnapshot ClientSnapshot
	Lines          []LineItem
	DiscountType   pricing.DiscountType
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal
	TimbreFiscal   valueobject.Money
	Status         InvoiceStatus
	DueDate        *time.Time
	DocumentTotals
	Notes  string
	PaidAt *time.Time
}

// InvoiceTerms are the caller supplied parts of a new invoice
type InvoiceTerms struct {
	Discount     pricing.Discount
	TaxRate      decimal.Decimal
	TimbreFiscal valueobject.Money
	DueDate      *time.Time
	Notes        string
}

// NewInvoice creates a standalone draft invoice and prices it
func NewInvoice(ref string, clientID uuid.UUID, snap *Snapshot, terms InvoiceTerms) (*Invoice, error) {
	if len(snap.Lines) == 0 {
		return nil, shared.NewValidationError("lines", "an invoice needs at least one line")
	}

	discount := terms.Discount
	if discount.Type == "" {
		discount.Type = pricing.DiscountPercentage
	}
	if !discount.Type.IsValid() {
		return nil, shared.NewValidationError("discount_type", "unknown discount type %q", discount.Type)
	}

	lines := cloneLines(snap.Lines)
	totals, err := priceLines(lines, discount, terms.TimbreFiscal)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               ref,
		ClientID:          clientID,
		ClientSnapshot:    snap.Client,
		Lines:             lines,
		DiscountType:      discount.Type,
		Discount:          discount.Value,
		TaxRate:           terms.TaxRate,
		TimbreFiscal:      terms.TimbreFiscal.Round(),
		Status:            InvoiceStatusDraft,
		DueDate:           terms.DueDate,
		DocumentTotals:    totals,
		Notes:             terms.Notes,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// PromotionTerms are the extra fields supplied when promoting a quote
type PromotionTerms struct {
	TimbreFiscal valueobject.Money
	DueDate      *time.Time
	Notes        string
}

// NewInvoiceFromQuote copies the snapshots of an accepted quote into a new
// draft invoice. alreadyInvoiced must report whether an invoice already
// references the quote.
func NewInvoiceFromQuote(ref string, q *Quote, alreadyInvoiced bool, terms PromotionTerms) (*Invoice, error) {
	if q.Status != QuoteStatusAccepted {
		return nil, shared.NewPreconditionError("quote %s is %s; only accepted quotes can be invoiced", q.Ref, q.Status)
	}
	if alreadyInvoiced {
		return nil, shared.NewPreconditionError("quote %s has already been invoiced", q.Ref)
	}

	notes := terms.Notes
	if notes == "" {
		notes = q.Notes
	}
	quoteID := q.ID

	inv, err := NewInvoice(ref, q.ClientID, &Snapshot{Client: q.ClientSnapshot, Lines: q.Lines}, InvoiceTerms{
		Discount:     q.DiscountSpec(),
		TaxRate:      q.TaxRate,
		TimbreFiscal: terms.TimbreFiscal,
		DueDate:      terms.DueDate,
		Notes:        notes,
	})
	if err != nil {
		return nil, err
	}
	inv.QuoteID = &quoteID

	inv.ClearDomainEvents()
	inv.AddDomainEvent(NewInvoicePromotedEvent(inv, q))
	return inv, nil
}

// ChangeStatus moves the invoice along an allowed edge of the state machine
func (i *Invoice) ChangeStatus(target InvoiceStatus, now time.Time) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", "unknown invoice status %q", target)
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError("invoice", i.Status, target)
	}

	from := i.Status
	i.Status = target
	if target == InvoiceStatusPaid {
		paidAt := now
		i.PaidAt = &paidAt
	}
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, from))
	return nil
}

// IsOverdueAt reports whether a sent invoice is past its due date
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return i.Status == InvoiceStatusSent && i.DueDate != nil && i.DueDate.Before(now)
}

// DiscountSpec returns the document discount
func (i *Invoice) DiscountSpec() pricing.Discount {
	return pricing.Discount{Type: i.DiscountType, Value: i.Discount}
}
