package sales

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeQuote   = "Quote"
	AggregateTypeInvoice = "Invoice"
)

// Event type constants
const (
	EventTypeQuoteCreated         = "QuoteCreated"
	EventTypeQuoteStatusChanged   = "QuoteStatusChanged"
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoicePromoted      = "InvoicePromoted"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
)

// QuoteCreatedEvent is raised when a new quote is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID uuid.UUID   `json:"quote_id"`
	Ref     string      `json:"ref"`
	Status  QuoteStatus `json:"status"`
	TTC     string      `json:"ttc"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		Ref:             q.Ref,
		Status:          q.Status,
		TTC:             q.TTC.String(),
	}
}

// QuoteStatusChangedEvent is raised on every quote status transition
type QuoteStatusChangedEvent struct {
	shared.BaseDomainEvent
	QuoteID uuid.UUID   `json:"quote_id"`
	Ref     string      `json:"ref"`
	From    QuoteStatus `json:"from"`
	To      QuoteStatus `json:"to"`
}

// NewQuoteStatusChangedEvent creates a new QuoteStatusChangedEvent
func NewQuoteStatusChangedEvent(q *Quote, from QuoteStatus) *QuoteStatusChangedEvent {
	return &QuoteStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteStatusChanged, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		Ref:             q.Ref,
		From:            from,
		To:              q.Status,
	}
}

// InvoiceCreatedEvent is raised when a standalone invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Ref       string    `json:"ref"`
	TTC       string    `json:"ttc"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		Ref:             i.Ref,
		TTC:             i.TTC.String(),
	}
}

// InvoicePromotedEvent is raised when an accepted quote becomes an invoice
type InvoicePromotedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Ref       string    `json:"ref"`
	QuoteID   uuid.UUID `json:"quote_id"`
	QuoteRef  string    `json:"quote_ref"`
	TTC       string    `json:"ttc"`
}

// NewInvoicePromotedEvent creates a new InvoicePromotedEvent
func NewInvoicePromotedEvent(i *Invoice, q *Quote) *InvoicePromotedEvent {
	return &InvoicePromotedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePromoted, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		Ref:             i.Ref,
		QuoteID:         q.ID,
		QuoteRef:        q.Ref,
		TTC:             i.TTC.String(),
	}
}

// InvoiceStatusChangedEvent is raised on every invoice status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID     `json:"invoice_id"`
	Ref       string        `json:"ref"`
	From      InvoiceStatus `json:"from"`
	To        InvoiceStatus `json:"to"`
	TTC       string        `json:"ttc"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(i *Invoice, from InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		Ref:             i.Ref,
		From:            from,
		To:              i.Status,
		TTC:             i.TTC.String(),
	}
}
