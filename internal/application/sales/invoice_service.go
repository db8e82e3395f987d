package sales

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo    sales.InvoiceRepository
	txScope        TransactionScope
	builder        *sales.SnapshotBuilder
	settings       SettingsReader
	policy         Policy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo sales.InvoiceRepository,
	txScope TransactionScope,
	source sales.SnapshotSource,
	settingsReader SettingsReader,
	policy Policy,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
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
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create stores a standalone draft invoice carrying the current stamp duty
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
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

	dueDate := req.DueDate
	if dueDate == nil && s.policy.InvoiceDueAfter > 0 {
		t := s.now().Add(s.policy.InvoiceDueAfter)
		dueDate = &t
	}
	terms := sales.InvoiceTerms{
		Discount:     toDiscount(req.Discount, req.DiscountType),
		TaxRate:      taxRate,
		TimbreFiscal: current.FiscalValue,
		DueDate:      dueDate,
		Notes:        req.Notes,
	}

	var invoice *sales.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ref, err := repos.InvoiceRepo().NextRef(ctx, s.now().Year())
		if err != nil {
			return err
		}
		invoice, err = sales.NewInvoice(ref, req.ClientID, snap, terms)
		if err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("ref", invoice.Ref),
		zap.String("ttc", invoice.TTC.String()))
	s.publishEvents(ctx, invoice)

	return &InvoiceResult{Invoice: ToInvoiceResponse(invoice, s.now()), StockWarnings: warnings}, nil
}

// ChangeStatus moves an invoice along an allowed edge of its lifecycle.
// Paying an invoice stamps paid_at.
func (s *InvoiceService) ChangeStatus(ctx context.Context, req ChangeInvoiceStatusRequest) (*InvoiceResponse, error) {
	var invoice *sales.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := invoice.ChangeStatus(sales.InvoiceStatus(req.Status), s.now()); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice status changed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(invoice.Status)))
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice, s.now())
	return &response, nil
}

// FindOverdue lists sent invoices whose due date is before now. It changes nothing.
func (s *InvoiceService) FindOverdue(ctx context.Context, now time.Time) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindSentDueBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return responses, nil
}

// SweepOverdue marks as overdue exactly the invoices FindOverdue reports for now
func (s *InvoiceService) SweepOverdue(ctx context.Context, now time.Time) (*SweepResult, error) {
	candidates, err := s.invoiceRepo.FindSentDueBefore(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for i := range candidates {
		id := candidates[i].ID
		var invoice *sales.Invoice
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			invoice, err = repos.InvoiceRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !invoice.IsOverdueAt(now) {
				invoice = nil
				return nil
			}
			if err := invoice.ChangeStatus(sales.InvoiceStatusOverdue, now); err != nil {
				return err
			}
			return repos.InvoiceRepo().Save(ctx, invoice)
		})
		if err != nil {
			return result, err
		}
		if invoice != nil {
			result.Marked++
			s.publishEvents(ctx, invoice)
		}
	}

	if result.Marked > 0 {
		s.logger.Info("Marked invoices overdue", zap.Int("count", result.Marked))
	}
	return result, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice, s.now())
	return &response, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, filter ListFilter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], s.now())
	}
	return responses, total, nil
}

// Delete removes an invoice that has not been paid
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if invoice.Status == sales.InvoiceStatusPaid {
			return shared.NewConflictError("invoice %s is paid and cannot be deleted", invoice.Ref)
		}
		return repos.InvoiceRepo().Delete(ctx, id)
	})
}

func (s *InvoiceService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	publishEvents(ctx, s.eventPublisher, s.logger, agg)
}
