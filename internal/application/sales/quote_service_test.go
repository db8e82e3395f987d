package sales

import (
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuoteService_Create_EndToEndTotals(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	result, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID,
		Lines:    f.e2eLines(),
		Discount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	q := result.Quote
	assert.Equal(t, "DEV-2026-0001", q.Ref)
	assert.Equal(t, sales.QuoteStatusDraft, q.Status)
	assert.Equal(t, "150.000", q.THT.String())
	assert.Equal(t, "15.000", q.TotalRemise.String())
	assert.Equal(t, "20.250", q.TotalTVA.String())
	assert.Equal(t, "155.250", q.TTC.String())

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "90.000", q.Lines[0].SubtotalHT.String())
	assert.Equal(t, "107.100", q.Lines[0].TotalTTC.String())
	assert.Equal(t, "45.000", q.Lines[1].SubtotalHT.String())
	assert.Equal(t, "48.150", q.Lines[1].TotalTTC.String())
	assert.Equal(t, "Atelier Nour", q.ClientSnapshot.Name)
	assert.Empty(t, result.StockWarnings)

	require.Len(t, q.TaxBreakdown, 2)
	assert.Equal(t, "10.000", q.TaxBreakdown["19"].TotalRemise.String())
	assert.Equal(t, "17.100", q.TaxBreakdown["19"].TotalTVA.String())
	assert.Equal(t, "3.150", q.TaxBreakdown["7"].TotalTVA.String())
}

func TestQuoteService_Create_IsIdempotentOnSameInput(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()
	req := CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.NewFromInt(10)}

	a, err := f.quoteSvc.Create(ctx, req)
	require.NoError(t, err)
	b, err := f.quoteSvc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, a.Quote.THT.String(), b.Quote.THT.String())
	assert.Equal(t, a.Quote.TotalRemise.String(), b.Quote.TotalRemise.String())
	assert.Equal(t, a.Quote.TotalTVA.String(), b.Quote.TotalTVA.String())
	assert.Equal(t, a.Quote.TTC.String(), b.Quote.TTC.String())
	assert.Equal(t, "DEV-2026-0002", b.Quote.Ref)
}

func TestQuoteService_Create_StockShortageIsAdvisory(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	result, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: f.bookID, Quantity: 5}},
	})
	require.NoError(t, err)

	require.Len(t, result.StockWarnings, 1)
	w := result.StockWarnings[0]
	assert.Equal(t, f.bookID, w.ProductID)
	assert.Equal(t, int64(5), w.RequestedQuantity)
	assert.Equal(t, int64(3), w.CurrentStock)
	assert.Equal(t, int64(2), w.Shortage)

	stored, err := f.quotes.FindByID(ctx, result.Quote.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Lines[0].Quantity)
}

func TestQuoteService_Create_DefaultsTaxRateFromSettings(t *testing.T) {
	f := newSalesFixture(Policy{QuoteValidity: 30 * 24 * time.Hour})
	ctx := context.Background()

	result, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: f.vaseID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.True(t, result.Quote.TaxRate.Equal(decimal.NewFromInt(19)))
	assert.True(t, result.Quote.Lines[0].TaxRate.Equal(decimal.NewFromInt(19)))
	assert.Equal(t, "238.000", result.Quote.TTC.String())
	require.NotNil(t, result.Quote.ValidUntil)
	assert.Equal(t, f.now.Add(30*24*time.Hour), *result.Quote.ValidUntil)
}

func TestQuoteService_Create_UnknownClientOrProduct(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	missing := uuid.New()
	_, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: missing, Lines: f.e2eLines()})
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	assert.Contains(t, err.Error(), missing.String())

	_, err = f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: []LineInput{{ProductID: missing, Quantity: 1}}})
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	assert.Empty(t, f.quotes.quotes)
}

func TestQuoteService_Create_InvalidDiscount(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	_, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.NewFromInt(120),
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.NewFromInt(200), DiscountType: "fixed",
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	// a stored discount keeps three decimals, so a finer one would re-price differently
	_, err = f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.RequireFromString("12.3456"),
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	assert.Empty(t, f.quotes.quotes)
}

func TestQuoteService_Create_FixedDiscount(t *testing.T) {
	f := newSalesFixture(Policy{})

	result, err := f.quoteSvc.Create(context.Background(), CreateQuoteRequest{
		ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.NewFromInt(15), DiscountType: "fixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "15.000", result.Quote.TotalRemise.String())
	assert.Equal(t, "155.250", result.Quote.TTC.String())
}

func TestQuoteService_SnapshotsSurviveLiveEdits(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	result, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines()})
	require.NoError(t, err)

	vase := f.source.products[f.vaseID]
	vase.RegularPrice = valueobject.MustParseMoney("999")
	vase.Name = "Renamed"
	f.source.products[f.vaseID] = vase
	client := f.source.clients[f.clientID]
	client.Name = "Someone else"
	f.source.clients[f.clientID] = client

	got, err := f.quoteSvc.GetByID(ctx, result.Quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atelier Nour", got.ClientSnapshot.Name)
	assert.Equal(t, "Vase", got.Lines[0].Name)
	assert.Equal(t, "100.000", got.Lines[0].UnitPrice.String())
	assert.Equal(t, "100.000", got.Lines[0].Product.RegularPrice.String())
}

func TestQuoteService_ChangeStatus(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		from     string
		to       string
		wantKind shared.ErrorKind
	}{
		{"draft to active", Policy{}, "draft", "active", ""},
		{"active to accepted", Policy{}, "active", "accepted", ""},
		{"active to rejected", Policy{}, "active", "rejected", ""},
		{"active to expired", Policy{}, "active", "expired", ""},
		{"draft to accepted refused by default", Policy{}, "draft", "accepted", shared.KindInvalidTransition},
		{"draft to accepted with direct accept", Policy{Quote: sales.QuotePolicy{AllowDirectAccept: true}}, "draft", "accepted", ""},
		{"draft to rejected", Policy{Quote: sales.QuotePolicy{AllowDirectAccept: true}}, "draft", "rejected", shared.KindInvalidTransition},
		{"active back to draft", Policy{}, "active", "draft", shared.KindInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSalesFixture(tt.policy)
			ctx := context.Background()

			created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: tt.from})
			require.NoError(t, err)

			got, err := f.quoteSvc.ChangeStatus(ctx, ChangeQuoteStatusRequest{ID: created.Quote.ID, Status: tt.to})
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, shared.KindOf(err))
				stored, _ := f.quotes.FindByID(ctx, created.Quote.ID)
				assert.Equal(t, sales.QuoteStatus(tt.from), stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sales.QuoteStatus(tt.to), got.Status)
		})
	}
}

func TestQuoteService_ChangeStatus_TerminalStatesAreFinal(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: "active"})
	require.NoError(t, err)
	_, err = f.quoteSvc.ChangeStatus(ctx, ChangeQuoteStatusRequest{ID: created.Quote.ID, Status: "rejected"})
	require.NoError(t, err)

	for _, to := range []string{"draft", "active", "accepted", "expired"} {
		_, err := f.quoteSvc.ChangeStatus(ctx, ChangeQuoteStatusRequest{ID: created.Quote.ID, Status: to})
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err), to)
	}
}

func acceptedQuote(t *testing.T, f *salesFixture) QuoteResponse {
	t.Helper()
	ctx := context.Background()
	created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{
		ClientID: f.clientID, Lines: f.e2eLines(), Discount: decimal.NewFromInt(10), Status: "active", Notes: "quote notes",
	})
	require.NoError(t, err)
	accepted, err := f.quoteSvc.ChangeStatus(ctx, ChangeQuoteStatusRequest{ID: created.Quote.ID, Status: "accepted"})
	require.NoError(t, err)
	return *accepted
}

func TestQuoteService_Promote(t *testing.T) {
	f := newSalesFixture(Policy{InvoiceDueAfter: 15 * 24 * time.Hour})
	ctx := context.Background()
	quote := acceptedQuote(t, f)

	invoice, err := f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: quote.ID})
	require.NoError(t, err)

	assert.Equal(t, "FAC-2026-0001", invoice.Ref)
	assert.Equal(t, sales.InvoiceStatusDraft, invoice.Status)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.Equal(t, quote.ClientSnapshot, invoice.ClientSnapshot)
	require.Len(t, invoice.Lines, len(quote.Lines))
	for i := range quote.Lines {
		assert.Equal(t, quote.Lines[i].Name, invoice.Lines[i].Name)
		assert.Equal(t, quote.Lines[i].Quantity, invoice.Lines[i].Quantity)
		assert.Equal(t, quote.Lines[i].SubtotalHT.String(), invoice.Lines[i].SubtotalHT.String())
		assert.Equal(t, quote.Lines[i].Product.SKU, invoice.Lines[i].Product.SKU)
	}
	assert.Equal(t, "quote notes", invoice.Notes)
	assert.Equal(t, "1.000", invoice.TimbreFiscal.String())
	assert.Equal(t, "155.250", quote.TTC.String())
	assert.Equal(t, "156.250", invoice.TTC.String())
	require.NotNil(t, invoice.DueDate)
	assert.Equal(t, f.now.Add(15*24*time.Hour), *invoice.DueDate)

	// the invoice owns its own copy of the lines
	stored, err := f.invoices.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	stored.Lines[0].Name = "mutated"
	q, err := f.quotes.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vase", q.Lines[0].Name)
}

func TestQuoteService_Promote_Twice(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()
	quote := acceptedQuote(t, f)

	_, err := f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: quote.ID})
	require.NoError(t, err)

	_, err = f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: quote.ID})
	require.Error(t, err)
	assert.Equal(t, shared.KindPrecondition, shared.KindOf(err))
	assert.Len(t, f.invoices.invoices, 1)
}

func TestQuoteService_Promote_RequiresAccepted(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: "active"})
	require.NoError(t, err)

	_, err = f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: created.Quote.ID})
	assert.Equal(t, shared.KindPrecondition, shared.KindOf(err))
	assert.Empty(t, f.invoices.invoices)
}

func TestQuoteService_Promote_PublishesEvent(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()
	quote := acceptedQuote(t, f)

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == sales.EventTypeInvoicePromoted
	})).Return(nil).Once()
	f.quoteSvc.SetEventPublisher(publisher)

	_, err := f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: quote.ID})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestQuoteService_Update(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines()})
	require.NoError(t, err)

	updated, err := f.quoteSvc.Update(ctx, UpdateQuoteRequest{
		ID:       created.Quote.ID,
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: f.bookID, Quantity: 4, TaxRate: rate(7)}},
		Notes:    "revised",
	})
	require.NoError(t, err)

	assert.Equal(t, created.Quote.Ref, updated.Quote.Ref)
	assert.Equal(t, "200.000", updated.Quote.THT.String())
	assert.Equal(t, "214.000", updated.Quote.TTC.String())
	assert.Equal(t, "revised", updated.Quote.Notes)
	require.Len(t, updated.StockWarnings, 1)
	assert.Equal(t, int64(1), updated.StockWarnings[0].Shortage)
}

func TestQuoteService_Update_ReadOnlyOnceInvoiced(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()
	quote := acceptedQuote(t, f)
	_, err := f.quoteSvc.Promote(ctx, PromoteQuoteRequest{QuoteID: quote.ID})
	require.NoError(t, err)

	_, err = f.quoteSvc.Update(ctx, UpdateQuoteRequest{ID: quote.ID, ClientID: f.clientID, Lines: f.e2eLines()})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	err = f.quoteSvc.Delete(ctx, quote.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	_, err = f.quotes.FindByID(ctx, quote.ID)
	assert.NoError(t, err)
}

func TestQuoteService_Update_TerminalQuote(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()
	quote := acceptedQuote(t, f)

	_, err := f.quoteSvc.Update(ctx, UpdateQuoteRequest{ID: quote.ID, ClientID: f.clientID, Lines: f.e2eLines()})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestQuoteService_Delete(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	created, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines()})
	require.NoError(t, err)

	require.NoError(t, f.quoteSvc.Delete(ctx, created.Quote.ID))
	_, err = f.quoteSvc.GetByID(ctx, created.Quote.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQuoteService_List(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	for _, status := range []string{"draft", "active", "active"} {
		_, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: status})
		require.NoError(t, err)
	}

	rows, total, err := f.quoteSvc.List(ctx, ListFilter{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)
}

func TestQuoteService_ExpireQuotes(t *testing.T) {
	f := newSalesFixture(Policy{})
	ctx := context.Background()

	past := f.now.Add(-time.Hour)
	future := f.now.Add(time.Hour)
	stale, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: "active", ValidUntil: &past})
	require.NoError(t, err)
	fresh, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), Status: "active", ValidUntil: &future})
	require.NoError(t, err)
	draft, err := f.quoteSvc.Create(ctx, CreateQuoteRequest{ClientID: f.clientID, Lines: f.e2eLines(), ValidUntil: &past})
	require.NoError(t, err)

	result, err := f.quoteSvc.ExpireQuotes(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)

	for id, want := range map[uuid.UUID]sales.QuoteStatus{
		stale.Quote.ID: sales.QuoteStatusExpired,
		fresh.Quote.ID: sales.QuoteStatusActive,
		draft.Quote.ID: sales.QuoteStatusDraft,
	} {
		q, err := f.quotes.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, q.Status)
	}
}
