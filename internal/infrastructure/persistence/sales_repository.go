package persistence

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRepository implements sales.QuoteRepository using GORM
type GormQuoteRepository struct {
	rows *GormRepository[models.QuoteModel]
}

// NewGormQuoteRepository creates a new GORM quote repository
func NewGormQuoteRepository(db *Database) *GormQuoteRepository {
	return newQuoteRepository(db.store())
}

func newQuoteRepository(s store) *GormQuoteRepository {
	return &GormQuoteRepository{rows: newGormRepository[models.QuoteModel](s, tableSpec{
		resource:     "quote",
		searchFields: []string{"ref", "notes"},
		sortFields:   QuoteSortFields,
		filterFields: QuoteFilterFields,
	})}
}

// FindByID returns shared.ErrNotFound if the quote does not exist
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quote, error) {
	m, err := r.rows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll returns the quotes matching filter and the total count
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Quote, int64, error) {
	rows, total, err := r.rows.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	quotes := make([]sales.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, total, nil
}

// FindActiveExpiredBefore returns active quotes whose validity ended before t
func (r *GormQuoteRepository) FindActiveExpiredBefore(ctx context.Context, t time.Time) ([]sales.Quote, error) {
	var rows []models.QuoteModel
	err := r.rows.run(ctx, func(db *gorm.DB) error {
		return db.Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", string(sales.QuoteStatusActive), t).
			Order("valid_until ASC").
			Find(&rows).Error
	})
	if err != nil {
		return nil, translateError(err, "quote", nil)
	}
	quotes := make([]sales.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, nil
}

// Save creates or updates a quote
func (r *GormQuoteRepository) Save(ctx context.Context, quote *sales.Quote) error {
	var m models.QuoteModel
	m.FromDomain(quote)
	return r.rows.Save(ctx, &m)
}

// Delete deletes a quote
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.Delete(ctx, id)
}

// NextRef returns the next human readable reference for the year
func (r *GormQuoteRepository) NextRef(ctx context.Context, year int) (string, error) {
	return nextRef(ctx, r.rows.store, &models.QuoteModel{}, sales.QuoteRefPrefix, year)
}

// GormInvoiceRepository implements sales.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	rows *GormRepository[models.InvoiceModel]
}

// NewGormInvoiceRepository creates a new GORM invoice repository
func NewGormInvoiceRepository(db *Database) *GormInvoiceRepository {
	return newInvoiceRepository(db.store())
}

func newInvoiceRepository(s store) *GormInvoiceRepository {
	return &GormInvoiceRepository{rows: newGormRepository[models.InvoiceModel](s, tableSpec{
		resource:     "invoice",
		searchFields: []string{"ref", "notes"},
		sortFields:   InvoiceSortFields,
		filterFields: InvoiceFilterFields,
	})}
}

// FindByID returns shared.ErrNotFound if the invoice does not exist
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	m, err := r.rows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByQuoteID returns shared.ErrNotFound if no invoice references the quote
func (r *GormInvoiceRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*sales.Invoice, error) {
	var m models.InvoiceModel
	err := r.rows.run(ctx, func(db *gorm.DB) error {
		return db.Where("quote_id = ?", quoteID).First(&m).Error
	})
	if err != nil {
		return nil, translateError(err, "invoice for quote", quoteID)
	}
	return m.ToDomain(), nil
}

// ExistsForQuote checks if any invoice references the quote
func (r *GormInvoiceRepository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := r.rows.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.InvoiceModel{}).Where("quote_id = ?", quoteID).Count(&count).Error
	})
	if err != nil {
		return false, translateError(err, "invoice", nil)
	}
	return count > 0, nil
}

// FindAll returns the invoices matching filter and the total count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Invoice, int64, error) {
	rows, total, err := r.rows.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	invoices := make([]sales.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// FindSentDueBefore returns sent invoices whose due date is before t
func (r *GormInvoiceRepository) FindSentDueBefore(ctx context.Context, t time.Time) ([]sales.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.rows.run(ctx, func(db *gorm.DB) error {
		return db.Where("status = ? AND due_date IS NOT NULL AND due_date < ?", string(sales.InvoiceStatusSent), t).
			Order("due_date ASC").
			Find(&rows).Error
	})
	if err != nil {
		return nil, translateError(err, "invoice", nil)
	}
	invoices := make([]sales.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *sales.Invoice) error {
	var m models.InvoiceModel
	m.FromDomain(invoice)
	return r.rows.Save(ctx, &m)
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.Delete(ctx, id)
}

// NextRef returns the next human readable reference for the year
func (r *GormInvoiceRepository) NextRef(ctx context.Context, year int) (string, error) {
	return nextRef(ctx, r.rows.store, &models.InvoiceModel{}, sales.InvoiceRefPrefix, year)
}

// nextRef scans the references of the year and returns the one after the highest
func nextRef(ctx context.Context, s store, model any, prefix string, year int) (string, error) {
	yearPrefix := sales.RefYearPrefix(prefix, year)
	var refs []string
	err := s.run(ctx, func(db *gorm.DB) error {
		return db.Model(model).Where("ref LIKE ?", yearPrefix+"%").Pluck("ref", &refs).Error
	})
	if err != nil {
		return "", translateError(err, "reference", nil)
	}

	highest := 0
	for _, ref := range refs {
		if n, ok := sales.ParseRefSeq(ref, yearPrefix); ok && n > highest {
			highest = n
		}
	}
	return sales.FormatRef(prefix, year, highest+1), nil
}
