package sales

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByID returns shared.ErrNotFound if the quote does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindAll returns the quotes matching filter and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, int64, error)

	// FindActiveExpiredBefore returns active quotes whose validity ended before t
	FindActiveExpiredBefore(ctx context.Context, t time.Time) ([]Quote, error)

	// Save creates or updates a quote
	Save(ctx context.Context, quote *Quote) error

	// Delete deletes a quote
	Delete(ctx context.Context, id uuid.UUID) error

	// NextRef returns the next human readable reference for the year
	NextRef(ctx context.Context, year int) (string, error)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID returns shared.ErrNotFound if the invoice does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByQuoteID returns shared.ErrNotFound if no invoice references the quote
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*Invoice, error)

	// ExistsForQuote checks if any invoice references the quote
	ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)

	// FindAll returns the invoices matching filter and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)

	// FindSentDueBefore returns sent invoices whose due date is before t
	FindSentDueBefore(ctx context.Context, t time.Time) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// Delete deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// NextRef returns the next human readable reference for the year
	NextRef(ctx context.Context, year int) (string, error)
}
