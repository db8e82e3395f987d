package sales

import (
	"time"

	"github.com/atelier/backend/internal/domain/pricing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusActive   QuoteStatus = "active"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusActive, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// QuotePolicy holds the configurable parts of the quote state machine
type QuotePolicy struct {
	// AllowDirectAccept permits draft -> accepted without passing through active
	AllowDirectAccept bool
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus, policy QuotePolicy) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusActive || (policy.AllowDirectAccept && target == QuoteStatusAccepted)
	case QuoteStatusActive:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected || target == QuoteStatusExpired
	}
	return false
}

// Quote is the aggregate root of a priced offer sent to a client
type Quote struct {
	shared.BaseAggregateRoot
	Ref            string
	ClientID       uuid.UUID
	ClientSnapshot ClientSnapshot
	Lines          []LineItem
	DiscountType   pricing.DiscountType
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal
	Status         QuoteStatus
	ValidUntil     *time.Time
	DocumentTotals
	Notes string
}

// QuoteTerms are the commercial terms shared by create and update
type QuoteTerms struct {
	Discount   pricing.Discount
	TaxRate    decimal.Decimal
	ValidUntil *time.Time
	Notes      string
}

// NewQuote creates a quote from a snapshot and prices it.
// initial must be draft or active.
func NewQuote(ref string, clientID uuid.UUID, snap *Snapshot, terms QuoteTerms, initial QuoteStatus) (*Quote, error) {
	if initial == "" {
		initial = QuoteStatusDraft
	}
	if initial != QuoteStatusDraft && initial != QuoteStatusActive {
		return nil, shared.NewValidationError("status", "a quote can only be created as draft or active, got %q", initial)
	}
	if len(snap.Lines) == 0 {
		return nil, shared.NewValidationError("lines", "a quote needs at least one line")
	}

	q := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               ref,
		ClientID:          clientID,
		Status:            initial,
	}
	if err := q.apply(snap, terms); err != nil {
		return nil, err
	}

	q.AddDomainEvent(NewQuoteCreatedEvent(q))
	return q, nil
}

// Revise replaces the client, lines and terms of the quote.
// Callers must first make sure no invoice references the quote.
func (q *Quote) Revise(clientID uuid.UUID, snap *Snapshot, terms QuoteTerms) error {
	if q.Status.IsTerminal() {
		return shared.NewConflictError("quote %s is %s and can no longer be edited", q.Ref, q.Status)
	}
	if len(snap.Lines) == 0 {
		return shared.NewValidationError("lines", "a quote needs at least one line")
	}
	q.ClientID = clientID
	if err := q.apply(snap, terms); err != nil {
		return err
	}
	q.Touch()
	q.IncrementVersion()
	return nil
}

func (q *Quote) apply(snap *Snapshot, terms QuoteTerms) error {
	discount := terms.Discount
	if discount.Type == "" {
		discount.Type = pricing.DiscountPercentage
	}
	if !discount.Type.IsValid() {
		return shared.NewValidationError("discount_type", "unknown discount type %q", discount.Type)
	}

	lines := cloneLines(snap.Lines)
	totals, err := priceLines(lines, discount, valueobject.Zero())
	if err != nil {
		return err
	}

	q.ClientSnapshot = snap.Client
	q.Lines = lines
	q.DiscountType = discount.Type
	q.Discount = discount.Value
	q.TaxRate = terms.TaxRate
	q.ValidUntil = terms.ValidUntil
	q.Notes = terms.Notes
	q.DocumentTotals = totals
	return nil
}

// ChangeStatus moves the quote along an allowed edge of the state machine.
// On failure the status is left unchanged.
func (q *Quote) ChangeStatus(target QuoteStatus, policy QuotePolicy) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", "unknown quote status %q", target)
	}
	if !q.Status.CanTransitionTo(target, policy) {
		return shared.NewInvalidTransitionError("quote", q.Status, target)
	}

	from := q.Status
	q.Status = target
	q.Touch()
	q.IncrementVersion()

	q.AddDomainEvent(NewQuoteStatusChangedEvent(q, from))
	return nil
}

// IsExpiredAt reports whether an active quote is past its validity date
func (q *Quote) IsExpiredAt(now time.Time) bool {
	return q.Status == QuoteStatusActive && q.ValidUntil != nil && q.ValidUntil.Before(now)
}

// DiscountSpec returns the document discount
func (q *Quote) DiscountSpec() pricing.Discount {
	return pricing.Discount{Type: q.DiscountType, Value: q.Discount}
}
