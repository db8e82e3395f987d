package persistence

import (
	"context"

	appsales "github.com/atelier/backend/internal/application/sales"
	"github.com/atelier/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesTransactionScope implements appsales.TransactionScope using GORM transactions
type GormSalesTransactionScope struct {
	db *Database
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope
func NewGormSalesTransactionScope(db *Database) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs fn within a database transaction, replaying it while the
// store is busy. fn may therefore run more than once.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		txs := s.db.txStore(tx)
		return fn(&gormSalesRepositories{
			quotes:   newQuoteRepository(txs),
			invoices: newInvoiceRepository(txs),
		})
	})
}

// gormSalesRepositories provides the sales repositories bound to one transaction
type gormSalesRepositories struct {
	quotes   *GormQuoteRepository
	invoices *GormInvoiceRepository
}

// QuoteRepo returns the quote repository scoped to the current transaction
func (r *gormSalesRepositories) QuoteRepo() sales.QuoteRepository {
	return r.quotes
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormSalesRepositories) InvoiceRepo() sales.InvoiceRepository {
	return r.invoices
}

var (
	_ appsales.TransactionScope          = (*GormSalesTransactionScope)(nil)
	_ appsales.TransactionalRepositories = (*gormSalesRepositories)(nil)
	_ sales.QuoteRepository              = (*GormQuoteRepository)(nil)
	_ sales.InvoiceRepository            = (*GormInvoiceRepository)(nil)
)
