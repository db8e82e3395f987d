package sales

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/settings"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettingsReader returns the effective business settings
type SettingsReader interface {
	Current(ctx context.Context) (*settings.Settings, error)
}

// Policy holds the configurable business rules of the sales services
type Policy struct {
	Quote           sales.QuotePolicy
	QuoteValidity   time.Duration // default validity of a new quote, 0 for none
	InvoiceDueAfter time.Duration // default payment term of a new invoice, 0 for none
}

// QuoteService handles quote business operations
type QuoteService struct {
	quoteRepo      sales.QuoteRepository
	invoiceRepo    sales.InvoiceRepository
	txScope        TransactionScope
	builder        *sales.SnapshotBuilder
	settings       SettingsReader
	policy         Policy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo sales.QuoteRepository,
	invoiceRepo sales.InvoiceRepository,
	txScope TransactionScope,
	source sales.SnapshotSource,
	settingsReader SettingsReader,
	policy Policy,
	logger *zap.Logger,
) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
		builder:     sales.NewSnapshotBuilder(source),
		settings:    settingsReader,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create snapshots the client and products, prices the lines and stores a
// new quote. Stock shortages are reported, never enforced.
func (s *QuoteService) Create(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error) {
	current, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	taxRate := current.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	snap, err := s.builder.Build(ctx, req.ClientID, toSelections(req.Lines), taxRate)
	if err != nil {
		return nil, err
	}
	warnings := sales.ValidateStock(snap.Lines)

	validUntil := req.ValidUntil
	if validUntil == nil && s.policy.QuoteValidity > 0 {
		t := s.now().Add(s.policy.QuoteValidity)
		validUntil = &t
	}
	terms := sales.QuoteTerms{
		Discount:   toDiscount(req.Discount, req.DiscountType),
		TaxRate:    taxRate,
		ValidUntil: validUntil,
		Notes:      req.Notes,
	}

	var quote *sales.Quote
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ref, err := repos.QuoteRepo().NextRef(ctx, s.now().Year())
		if err != nil {
			return err
		}
		quote, err = sales.NewQuote(ref, req.ClientID, snap, terms, sales.QuoteStatus(req.Status))
		if err != nil {
			return err
		}
		return repos.QuoteRepo().Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("ref", quote.Ref),
		zap.String("ttc", quote.TTC.String()),
		zap.Int("stock_warnings", len(warnings)))
	s.publishEvents(ctx, quote)

	return &QuoteResult{Quote: ToQuoteResponse(quote), StockWarnings: warnings}, nil
}

// Update re-snapshots, re-validates and re-prices a quote that is neither
// terminal nor referenced by an invoice.
func (s *QuoteService) Update(ctx context.Context, req UpdateQuoteRequest) (*QuoteResult, error) {
	existing, err := s.quoteRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	taxRate := existing.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	snap, err := s.builder.Build(ctx, req.ClientID, toSelections(req.Lines), taxRate)
	if err != nil {
		return nil, err
	}
	warnings := sales.ValidateStock(snap.Lines)

	validUntil := req.ValidUntil
	if validUntil == nil {
		validUntil = existing.ValidUntil
	}
	terms := sales.QuoteTerms{
		Discount:   toDiscount(req.Discount, req.DiscountType),
		TaxRate:    taxRate,
		ValidUntil: validUntil,
		Notes:      req.Notes,
	}

	var quote *sales.Quote
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		quote, err = repos.QuoteRepo().FindByID(ctx, req.ID)
		if err != nil {
			return err
		}
		invoiced, err := repos.InvoiceRepo().ExistsForQuote(ctx, quote.ID)
		if err != nil {
			return err
		}
		if invoiced {
			return shared.NewConflictError("quote %s has been invoiced and is read-only", quote.Ref)
		}
		if err := quote.Revise(req.ClientID, snap, terms); err != nil {
			return err
		}
		return repos.QuoteRepo().Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote updated", zap.String("quote_id", quote.ID.String()), zap.String("ref", quote.Ref))
	return &QuoteResult{Quote: ToQuoteResponse(quote), StockWarnings: warnings}, nil
}

// ChangeStatus moves a quote along an allowed edge of its lifecycle
func (s *QuoteService) ChangeStatus(ctx context.Context, req ChangeQuoteStatusRequest) (*QuoteResponse, error) {
	var quote *sales.Quote
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		quote, err = repos.QuoteRepo().FindByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := quote.ChangeStatus(sales.QuoteStatus(req.Status), s.policy.Quote); err != nil {
			return err
		}
		return repos.QuoteRepo().Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote status changed",
		zap.String("quote_id", quote.ID.String()),
		zap.String("status", string(quote.Status)))
	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Promote copies an accepted quote into a new draft invoice carrying the
// current stamp duty. Quote lookup, the double-promotion check and the
// insert share one transaction.
func (s *QuoteService) Promote(ctx context.Context, req PromoteQuoteRequest) (*InvoiceResponse, error) {
	current, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	dueDate := req.DueDate
	if dueDate == nil && s.policy.InvoiceDueAfter > 0 {
		t := s.now().Add(s.policy.InvoiceDueAfter)
		dueDate = &t
	}

	var invoice *sales.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		quote, err := repos.QuoteRepo().FindByID(ctx, req.QuoteID)
		if err != nil {
			return err
		}
		invoiced, err := repos.InvoiceRepo().ExistsForQuote(ctx, quote.ID)
		if err != nil {
			return err
		}
		ref, err := repos.InvoiceRepo().NextRef(ctx, s.now().Year())
		if err != nil {
			return err
		}
		invoice, err = sales.NewInvoiceFromQuote(ref, quote, invoiced, sales.PromotionTerms{
			TimbreFiscal: current.FiscalValue,
			DueDate:      dueDate,
			Notes:        req.Notes,
		})
		if err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote promoted to invoice",
		zap.String("quote_id", req.QuoteID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("ref", invoice.Ref))
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice, s.now())
	return &response, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// List retrieves a page of quotes
func (s *QuoteService) List(ctx context.Context, filter ListFilter) ([]QuoteResponse, int64, error) {
	quotes, total, err := s.quoteRepo.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		responses[i] = ToQuoteResponse(&quotes[i])
	}
	return responses, total, nil
}

// Delete removes a quote that no invoice references
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		quote, err := repos.QuoteRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		invoiced, err := repos.InvoiceRepo().ExistsForQuote(ctx, id)
		if err != nil {
			return err
		}
		if invoiced {
			return shared.NewConflictError("quote %s is referenced by an invoice and cannot be deleted", quote.Ref)
		}
		return repos.QuoteRepo().Delete(ctx, id)
	})
}

// ExpireQuotes moves active quotes whose validity ended before now to expired
func (s *QuoteService) ExpireQuotes(ctx context.Context, now time.Time) (*ExpiryResult, error) {
	candidates, err := s.quoteRepo.FindActiveExpiredBefore(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &ExpiryResult{}
	for i := range candidates {
		id := candidates[i].ID
		var quote *sales.Quote
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			quote, err = repos.QuoteRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !quote.IsExpiredAt(now) {
				quote = nil
				return nil
			}
			if err := quote.ChangeStatus(sales.QuoteStatusExpired, s.policy.Quote); err != nil {
				return err
			}
			return repos.QuoteRepo().Save(ctx, quote)
		})
		if err != nil {
			return result, err
		}
		if quote != nil {
			result.Expired++
			s.publishEvents(ctx, quote)
		}
	}

	if result.Expired > 0 {
		s.logger.Info("Expired quotes", zap.Int("count", result.Expired))
	}
	return result, nil
}

func (s *QuoteService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	publishEvents(ctx, s.eventPublisher, s.logger, agg)
}

// publishEvents publishes the pending events of agg after its transaction
// committed. Publication failures are logged and do not fail the operation.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.String("aggregate_id", agg.GetID().String()),
			zap.Error(err))
	}
}
