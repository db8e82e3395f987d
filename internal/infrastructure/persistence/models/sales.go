package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/pricing"
	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentTotalsModel holds the total columns shared by quotes and invoices
type DocumentTotalsModel struct {
	THT         valueobject.Money `gorm:"column:tht;type:decimal(18,3);not null;default:0"`
	TotalRemise valueobject.Money `gorm:"type:decimal(18,3);not null;default:0"`
	TotalTVA    valueobject.Money `gorm:"column:total_tva;type:decimal(18,3);not null;default:0"`
	TTC         valueobject.Money `gorm:"column:ttc;type:decimal(18,3);not null;default:0"`
}

func (t DocumentTotalsModel) toDomain() sales.DocumentTotals {
	return sales.DocumentTotals{THT: t.THT, TotalRemise: t.TotalRemise, TotalTVA: t.TotalTVA, TTC: t.TTC}
}

func totalsFromDomain(t sales.DocumentTotals) DocumentTotalsModel {
	return DocumentTotalsModel{THT: t.THT, TotalRemise: t.TotalRemise, TotalTVA: t.TotalTVA, TTC: t.TTC}
}

// QuoteModel is the persistence model for the Quote aggregate
type QuoteModel struct {
	AggregateModel
	Ref              string                                   `gorm:"type:varchar(20);not null;uniqueIndex"`
	ClientID         uuid.UUID                                `gorm:"type:uuid;not null;index"`
	ClientSnapshot   datatypes.JSONType[sales.ClientSnapshot] `gorm:"not null"`
	ProductsSnapshot datatypes.JSONSlice[sales.LineItem]      `gorm:"not null"`
	DiscountType     string                                   `gorm:"type:varchar(20);not null;default:'percentage'"`
	Discount         decimal.Decimal                          `gorm:"type:decimal(18,3);not null;default:0"`
	TaxRate          decimal.Decimal                          `gorm:"type:decimal(7,3);not null;default:0"`
	Status           string                                   `gorm:"type:varchar(20);not null;index"`
	ValidUntil       *time.Time                               `gorm:"index"`
	DocumentTotalsModel
	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// FromDomain populates the model from a domain Quote
func (m *QuoteModel) FromDomain(q *sales.Quote) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.Ref = q.Ref
	m.ClientID = q.ClientID
	m.ClientSnapshot = datatypes.NewJSONType(q.ClientSnapshot)
	m.ProductsSnapshot = datatypes.JSONSlice[sales.LineItem](q.Lines)
	m.DiscountType = string(q.DiscountType)
	m.Discount = q.Discount
	m.TaxRate = q.TaxRate
	m.Status = string(q.Status)
	m.ValidUntil = q.ValidUntil
	m.DocumentTotalsModel = totalsFromDomain(q.DocumentTotals)
	m.Notes = q.Notes
}

// ToDomain converts the model to a domain Quote
func (m *QuoteModel) ToDomain() *sales.Quote {
	lines := make([]sales.LineItem, len(m.ProductsSnapshot))
	copy(lines, m.ProductsSnapshot)
	return &sales.Quote{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Ref:               m.Ref,
		ClientID:          m.ClientID,
		ClientSnapshot:    m.ClientSnapshot.Data(),
		Lines:             lines,
		DiscountType:      pricing.DiscountType(m.DiscountType),
		Discount:          m.Discount,
		TaxRate:           m.TaxRate,
		Status:            sales.QuoteStatus(m.Status),
		ValidUntil:        m.ValidUntil,
		DocumentTotals:    m.DocumentTotalsModel.toDomain(),
		Notes:             m.Notes,
	}
}

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	AggregateModel
	Ref              string                                   `gorm:"type:varchar(20);not null;uniqueIndex"`
	QuoteID          *uuid.UUID                               `gorm:"type:uuid;uniqueIndex"`
	ClientID         uuid.UUID                                `gorm:"type:uuid;not null;index"`
	ClientSnapshot   datatypes.JSONType[sales.ClientSnapshot] `gorm:"not null"`
	ProductsSnapshot datatypes.JSONSlice[sales.LineItem]      `gorm:"not null"`
	DiscountType     string                                   `gorm:"type:varchar(20);not null;default:'percentage'"`
	Discount         decimal.Decimal                          `gorm:"type:decimal(18,3);not null;default:0"`
	TaxRate          decimal.Decimal                          `gorm:"type:decimal(7,3);not null;default:0"`
	TimbreFiscal     valueobject.Money                        `gorm:"type:decimal(18,3);not null;default:0"`
	Status           string                                   `gorm:"type:varchar(20);not null;index"`
	DueDate          *time.Time                               `gorm:"index"`
	DocumentTotalsModel
	Notes  string `gorm:"type:text"`
	PaidAt *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// FromDomain populates the model from a domain Invoice
func (m *InvoiceModel) FromDomain(i *sales.Invoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Ref = i.Ref
	m.QuoteID = i.QuoteID
	m.ClientID = i.ClientID
	m.ClientSnapshot = datatypes.NewJSONType(i.ClientSnapshot)
	m.ProductsSnapshot = datatypes.JSONSlice[sales.LineItem](i.Lines)
	m.DiscountType = string(i.DiscountType)
	m.Discount = i.Discount
	m.TaxRate = i.TaxRate
	m.TimbreFiscal = i.TimbreFiscal
	m.Status = string(i.Status)
	m.DueDate = i.DueDate
	m.DocumentTotalsModel = totalsFromDomain(i.DocumentTotals)
	m.Notes = i.Notes
	m.PaidAt = i.PaidAt
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *sales.Invoice {
	lines := make([]sales.LineItem, len(m.ProductsSnapshot))
	copy(lines, m.ProductsSnapshot)
	return &sales.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Ref:               m.Ref,
		QuoteID:           m.QuoteID,
		ClientID:          m.ClientID,
		ClientSnapshot:    m.ClientSnapshot.Data(),
		Lines:             lines,
		DiscountType:      pricing.DiscountType(m.DiscountType),
		Discount:          m.Discount,
		TaxRate:           m.TaxRate,
		TimbreFiscal:      m.TimbreFiscal,
		Status:            sales.InvoiceStatus(m.Status),
		DueDate:           m.DueDate,
		DocumentTotals:    m.DocumentTotalsModel.toDomain(),
		Notes:             m.Notes,
		PaidAt:            m.PaidAt,
	}
}
