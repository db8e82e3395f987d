package sales

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/settings"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memQuoteRepository is an in-memory sales.QuoteRepository
type memQuoteRepository struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]sales.Quote
	seq    map[int]int
}

func newMemQuoteRepository() *memQuoteRepository {
	return &memQuoteRepository{quotes: map[uuid.UUID]sales.Quote{}, seq: map[int]int{}}
}

func (r *memQuoteRepository) FindByID(_ context.Context, id uuid.UUID) (*sales.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, shared.NewNotFoundError("quote", id)
	}
	return &q, nil
}

func (r *memQuoteRepository) FindAll(_ context.Context, filter shared.Filter) ([]sales.Quote, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.Quote
	for _, q := range r.quotes {
		if status, ok := filter.Filters["status"]; ok && string(q.Status) != status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out, int64(len(out)), nil
}

func (r *memQuoteRepository) FindActiveExpiredBefore(_ context.Context, t time.Time) ([]sales.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.Quote
	for _, q := range r.quotes {
		if q.IsExpiredAt(t) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuoteRepository) Save(_ context.Context, quote *sales.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[quote.ID] = *quote
	return nil
}

func (r *memQuoteRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[id]; !ok {
		return shared.NewNotFoundError("quote", id)
	}
	delete(r.quotes, id)
	return nil
}

func (r *memQuoteRepository) NextRef(_ context.Context, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[year]++
	return sales.FormatRef(sales.QuoteRefPrefix, year, r.seq[year]), nil
}

// memInvoiceRepository is an in-memory sales.InvoiceRepository
type memInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]sales.Invoice
	seq      map[int]int
}

func newMemInvoiceRepository() *memInvoiceRepository {
	return &memInvoiceRepository{invoices: map[uuid.UUID]sales.Invoice{}, seq: map[int]int{}}
}

func (r *memInvoiceRepository) FindByID(_ context.Context, id uuid.UUID) (*sales.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.NewNotFoundError("invoice", id)
	}
	return &inv, nil
}

func (r *memInvoiceRepository) FindByQuoteID(_ context.Context, quoteID uuid.UUID) (*sales.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.QuoteID != nil && *inv.QuoteID == quoteID {
			return &inv, nil
		}
	}
	return nil, shared.NewNotFoundError("invoice for quote", quoteID)
}

func (r *memInvoiceRepository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	_, err := r.FindByQuoteID(ctx, quoteID)
	return err == nil, nil
}

func (r *memInvoiceRepository) FindAll(_ context.Context, filter shared.Filter) ([]sales.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.Invoice
	for _, inv := range r.invoices {
		if status, ok := filter.Filters["status"]; ok && string(inv.Status) != status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out, int64(len(out)), nil
}

func (r *memInvoiceRepository) FindSentDueBefore(_ context.Context, t time.Time) ([]sales.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.Invoice
	for _, inv := range r.invoices {
		if inv.IsOverdueAt(t) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepository) Save(_ context.Context, invoice *sales.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *memInvoiceRepository) NextRef(_ context.Context, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[year]++
	return sales.FormatRef(sales.InvoiceRefPrefix, year, r.seq[year]), nil
}

// memSource is a mutable sales.SnapshotSource
type memSource struct {
	clients  map[uuid.UUID]sales.ClientSource
	products map[uuid.UUID]sales.ProductSource
}

func (s *memSource) Client(_ context.Context, id uuid.UUID) (*sales.ClientSource, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, shared.NewNotFoundError("client", id)
	}
	return &c, nil
}

func (s *memSource) Product(_ context.Context, productID uuid.UUID, _ *uuid.UUID) (*sales.ProductSource, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, shared.NewNotFoundError("product", productID)
	}
	return &p, nil
}

// MockSettingsReader is a mock implementation of SettingsReader
type MockSettingsReader struct {
	mock.Mock
}

func (m *MockSettingsReader) Current(ctx context.Context) (*settings.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.Settings), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// salesFixture wires both services over shared in-memory stores
type salesFixture struct {
	quotes    *memQuoteRepository
	invoices  *memInvoiceRepository
	source    *memSource
	settings  *MockSettingsReader
	quoteSvc  *QuoteService
	invoiceSv *InvoiceService
	clientID  uuid.UUID
	vaseID    uuid.UUID // 100.000 @ 19%
	bookID    uuid.UUID // 50.000 @ 7%, stock managed: 3
	now       time.Time
}

func newSalesFixture(policy Policy) *salesFixture {
	f := &salesFixture{
		quotes:   newMemQuoteRepository(),
		invoices: newMemInvoiceRepository(),
		settings: new(MockSettingsReader),
		clientID: uuid.New(),
		vaseID:   uuid.New(),
		bookID:   uuid.New(),
		now:      time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
	f.source = &memSource{
		clients: map[uuid.UUID]sales.ClientSource{
			f.clientID: {ID: f.clientID, Name: "Atelier Nour", Type: sales.ClientTypeCompany, Address: "12 rue des Potiers", Phone: "71000000", TaxID: "1234567A"},
		},
		products: map[uuid.UUID]sales.ProductSource{
			f.vaseID: {ProductID: f.vaseID, Name: "Vase", SKU: "VASE", RegularPrice: valueobject.MustParseMoney("100")},
			f.bookID: {ProductID: f.bookID, Name: "Livre", SKU: "BOOK", RegularPrice: valueobject.MustParseMoney("50"), ManageStock: true, StockQuantity: 3},
		},
	}
	f.settings.On("Current", mock.Anything).
		Return(settings.Defaults(decimal.NewFromInt(19), valueobject.MustParseMoney("1.000")), nil)

	scope := NewNoOpTransactionScope(f.quotes, f.invoices)
	f.quoteSvc = NewQuoteService(f.quotes, f.invoices, scope, f.source, f.settings, policy, nil)
	f.quoteSvc.now = func() time.Time { return f.now }
	f.invoiceSv = NewInvoiceService(f.invoices, scope, f.source, f.settings, policy, nil)
	f.invoiceSv.now = func() time.Time { return f.now }
	return f
}

func rate(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// e2eLines is 1 x 100.000 at 19% and 1 x 50.000 at 7%
func (f *salesFixture) e2eLines() []LineInput {
	return []LineInput{
		{ProductID: f.vaseID, Quantity: 1, TaxRate: rate(19)},
		{ProductID: f.bookID, Quantity: 1, TaxRate: rate(7)},
	}
}
