// Package settings holds the single-row business settings consumed by
// document pricing.
package settings

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SingletonID is the primary key of the only settings row
const SingletonID = 1

// Settings carries the default tax rate and the stamp duty applied to invoices
type Settings struct {
	ID          int               `gorm:"primaryKey" json:"-"`
	TaxRate     decimal.Decimal   `gorm:"type:decimal(7,3);not null" json:"tax_rate"`
	FiscalValue valueobject.Money `gorm:"type:decimal(18,3);not null" json:"fiscal_value"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Settings) TableName() string {
	return "settings"
}

// Defaults returns settings built from configured defaults
func Defaults(taxRate decimal.Decimal, fiscalValue valueobject.Money) *Settings {
	return &Settings{
		ID:          SingletonID,
		TaxRate:     taxRate,
		FiscalValue: fiscalValue,
	}
}

// Apply updates the non-nil fields after validating them
func (s *Settings) Apply(taxRate *decimal.Decimal, fiscalValue *valueobject.Money) error {
	if taxRate != nil {
		if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewValidationError("tax_rate", "tax rate must be between 0 and 100")
		}
		s.TaxRate = *taxRate
	}
	if fiscalValue != nil {
		if fiscalValue.IsNegative() {
			return shared.NewValidationError("fiscal_value", "fiscal value cannot be negative")
		}
		s.FiscalValue = fiscalValue.Round()
	}
	s.UpdatedAt = time.Now()
	return nil
}

// Repository persists the settings row
type Repository interface {
	// Get returns the stored row, or ErrNotFound when none has been saved yet
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
