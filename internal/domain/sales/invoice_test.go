package sales

import (
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		want bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSent, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, true},
		{InvoiceStatusDraft, InvoiceStatusOverdue, false},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusDraft, false},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusSent, false},
		{InvoiceStatusPaid, InvoiceStatusDraft, false},
		{InvoiceStatusPaid, InvoiceStatusSent, false},
		{InvoiceStatusPaid, InvoiceStatusOverdue, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewInvoice_AddsStampDutyOnce(t *testing.T) {
	inv, err := NewInvoice("FAC-2026-0001", uuid.New(), testSnapshot(), InvoiceTerms{
		Discount:     tenPercent().Discount,
		TaxRate:      decimal.NewFromInt(19),
		TimbreFiscal: valueobject.MustParseMoney("1.000"),
	})
	require.NoError(t, err)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.QuoteID)
	assert.Equal(t, "150.000", inv.THT.String())
	assert.Equal(t, "156.250", inv.TTC.String())
	assert.Equal(t, "1.000", inv.TimbreFiscal.String())
}

func TestNewInvoiceFromQuote(t *testing.T) {
	stamp := PromotionTerms{TimbreFiscal: valueobject.MustParseMoney("1.000")}

	t.Run("copies snapshots of an accepted quote", func(t *testing.T) {
		q := createTestQuote(t, QuoteStatusAccepted)

		inv, err := NewInvoiceFromQuote("FAC-2026-0001", q, false, stamp)
		require.NoError(t, err)

		require.NotNil(t, inv.QuoteID)
		assert.Equal(t, q.ID, *inv.QuoteID)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, q.ClientSnapshot, inv.ClientSnapshot)
		assert.Equal(t, len(q.Lines), len(inv.Lines))
		assert.Equal(t, "156.250", inv.TTC.String())

		inv.Lines[0].Name = "edited on invoice"
		assert.Equal(t, "vase", q.Lines[0].Name)

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoicePromoted, events[0].EventType())
	})

	t.Run("requires accepted status", func(t *testing.T) {
		for _, status := range []QuoteStatus{QuoteStatusDraft, QuoteStatusActive, QuoteStatusRejected, QuoteStatusExpired} {
			q := createTestQuote(t, status)
			_, err := NewInvoiceFromQuote("FAC-2026-0001", q, false, stamp)
			assert.Equal(t, shared.KindPrecondition, shared.KindOf(err), status)
		}
	})

	t.Run("rejects second promotion", func(t *testing.T) {
		q := createTestQuote(t, QuoteStatusAccepted)
		_, err := NewInvoiceFromQuote("FAC-2026-0002", q, true, stamp)
		assert.Equal(t, shared.KindPrecondition, shared.KindOf(err))
	})
}

func TestInvoice_ChangeStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	newInvoice := func(t *testing.T) *Invoice {
		inv, err := NewInvoice("FAC-2026-0001", uuid.New(), testSnapshot(), InvoiceTerms{})
		require.NoError(t, err)
		return inv
	}

	t.Run("paid stamps paid_at", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.ChangeStatus(InvoiceStatusSent, now))
		require.NoError(t, inv.ChangeStatus(InvoiceStatusPaid, now))
		require.NotNil(t, inv.PaidAt)
		assert.Equal(t, now, *inv.PaidAt)
	})

	t.Run("paid is terminal", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.ChangeStatus(InvoiceStatusPaid, now))
		for _, target := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue} {
			err := inv.ChangeStatus(target, now)
			assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
			assert.Equal(t, InvoiceStatusPaid, inv.Status)
		}
	})
}

func TestInvoice_IsOverdueAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	inv, err := NewInvoice("FAC-2026-0001", uuid.New(), testSnapshot(), InvoiceTerms{DueDate: &yesterday})
	require.NoError(t, err)

	assert.False(t, inv.IsOverdueAt(now), "draft invoices are never overdue")
	inv.Status = InvoiceStatusSent
	assert.True(t, inv.IsOverdueAt(now))
	assert.False(t, inv.IsOverdueAt(yesterday))
}
