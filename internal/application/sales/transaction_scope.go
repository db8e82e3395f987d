package sales

import (
	"context"

	"github.com/atelier/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the sales repositories.
// Every repository handed to fn shares one database transaction, committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the sales repositories within a transaction
type TransactionalRepositories interface {
	// QuoteRepo returns the quote repository scoped to the current transaction
	QuoteRepo() sales.QuoteRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() sales.InvoiceRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is meant for tests.
type NoOpTransactionScope struct {
	quoteRepo   sales.QuoteRepository
	invoiceRepo sales.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(quoteRepo sales.QuoteRepository, invoiceRepo sales.InvoiceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{quoteRepo: quoteRepo, invoiceRepo: invoiceRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// QuoteRepo returns the quote repository
func (s *NoOpTransactionScope) QuoteRepo() sales.QuoteRepository {
	return s.quoteRepo
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() sales.InvoiceRepository {
	return s.invoiceRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
