package command

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	integrationapp "github.com/atelier/backend/internal/application/integration"
	partnerapp "github.com/atelier/backend/internal/application/partner"
	salesapp "github.com/atelier/backend/internal/application/sales"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuotes struct {
	QuoteService
	mock.Mock
}

func (m *mockQuotes) GetByID(ctx context.Context, id uuid.UUID) (*salesapp.QuoteResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.QuoteResponse), args.Error(1)
}

func (m *mockQuotes) List(ctx context.Context, filter salesapp.ListFilter) ([]salesapp.QuoteResponse, int64, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]salesapp.QuoteResponse)
	return rows, args.Get(1).(int64), args.Error(2)
}

func (m *mockQuotes) Promote(ctx context.Context, req salesapp.PromoteQuoteRequest) (*salesapp.InvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.InvoiceResponse), args.Error(1)
}

type mockInvoices struct {
	InvoiceService
	mock.Mock
}

func (m *mockInvoices) SweepOverdue(ctx context.Context, now time.Time) (*salesapp.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(*salesapp.SweepResult), args.Error(1)
}

type mockSync struct {
	SyncService
	mock.Mock
}

func (m *mockSync) SyncAll(ctx context.Context) (*integration.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SyncResult), args.Error(1)
}

func (m *mockSync) UploadMedia(context.Context, string, string, io.Reader) (*integrationapp.MediaResponse, error) {
	panic("not used")
}

type mockClients struct {
	ClientService
	mock.Mock
}

func (m *mockClients) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClients) Create(ctx context.Context, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*partnerapp.ClientResponse), args.Error(1)
}

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	quotes   *mockQuotes
	invoices *mockInvoices
	sync     *mockSync
	clients  *mockClients
	d        *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		quotes:   new(mockQuotes),
		invoices: new(mockInvoices),
		sync:     new(mockSync),
		clients:  new(mockClients),
		d:        NewDispatcher(nil),
	}
	Register(f.d, Services{
		Quotes:   f.quotes,
		Invoices: f.invoices,
		Sync:     f.sync,
		Clients:  f.clients,
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

func TestRegister_CoversEveryCommand(t *testing.T) {
	expected := []string{
		"quote:create", "quote:update", "quote:get", "quote:list", "quote:delete", "quote:changeStatus", "quote:promote",
		"invoice:create", "invoice:get", "invoice:list", "invoice:delete", "invoice:changeStatus", "invoice:overdue", "invoice:sweepOverdue",
		"product:list", "product:get", "product:variations", "product:create", "product:update", "product:delete", "product:pull",
		"category:list", "category:get", "category:create", "category:update", "category:delete", "category:pull",
		"attribute:list", "attribute:get", "attribute:create", "attribute:update", "attribute:delete", "attribute:sync",
		"term:list", "term:create", "term:update", "term:delete",
		"tag:list", "tag:get", "tag:create", "tag:update", "tag:delete", "tag:sync",
		"catalog:sync", "media:upload",
		"client:list", "client:get", "client:create", "client:update", "client:delete", "client:deleteMany",
		"employee:list", "employee:get", "employee:create", "employee:update", "employee:delete",
		"settings:get", "settings:update",
	}
	assert.ElementsMatch(t, expected, newFixture().d.Names())
}

func TestDispatch_UnknownCommand(t *testing.T) {
	_, err := newFixture().d.Dispatch(context.Background(), "quote:explode", nil)

	status, resp := dto.FromError(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrCodeUnknownCmd, resp.Error)
	assert.Equal(t, "quote:explode", resp.Details["command"])
}

func TestDispatch_RejectsUnknownFields(t *testing.T) {
	f := newFixture()
	payload := json.RawMessage(`{"id":"` + uuid.NewString() + `","force":true}`)

	_, err := f.d.Dispatch(context.Background(), "quote:get", payload)

	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	assert.Contains(t, err.Error(), "force")
	f.quotes.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDispatch_ValidatesPayload(t *testing.T) {
	f := newFixture()

	_, err := f.d.Dispatch(context.Background(), "quote:promote", json.RawMessage(`{}`))

	status, resp := dto.FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "is required", resp.Details["quote_id"])
}

func TestDispatch_MalformedJSON(t *testing.T) {
	_, err := newFixture().d.Dispatch(context.Background(), "quote:get", json.RawMessage(`{"id":`))

	_, resp := dto.FromError(err)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error)
}

func TestDispatch_TrailingData(t *testing.T) {
	_, err := newFixture().d.Dispatch(context.Background(), "settings:get", json.RawMessage(`{} {}`))

	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestDispatch_GetReturnsData(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()
	quote := &salesapp.QuoteResponse{ID: id, Ref: "DEV-2026-0001"}
	f.quotes.On("GetByID", ctx, id).Return(quote, nil)

	result, err := f.d.Dispatch(ctx, "quote:get", json.RawMessage(`{"id":"`+id.String()+`"}`))

	require.NoError(t, err)
	assert.Equal(t, quote, result.Data)
	assert.True(t, result.Response().Success)
}

func TestDispatch_ListReturnsRowsAndCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.quotes.On("List", ctx, salesapp.ListFilter{Page: 2, Status: "active"}).Return(nil, int64(0), nil)

	result, err := f.d.Dispatch(ctx, "quote:list", json.RawMessage(`{"page":2,"status":"active"}`))

	require.NoError(t, err)
	assert.Equal(t, []salesapp.QuoteResponse{}, result.Rows)
	require.NotNil(t, result.Count)
	assert.Zero(t, *result.Count)
}

func TestDispatch_PropagatesDomainErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quoteID := uuid.New()
	f.quotes.On("Promote", ctx, salesapp.PromoteQuoteRequest{QuoteID: quoteID}).
		Return(nil, shared.NewPreconditionError("quote DEV-2026-0001 has already been invoiced"))

	_, err := f.d.Dispatch(ctx, "quote:promote", json.RawMessage(`{"quote_id":"`+quoteID.String()+`"}`))

	status, resp := dto.FromError(err)
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "quote DEV-2026-0001 has already been invoiced", resp.Message)
}

func TestDispatch_SweepUsesClockUnlessPinned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pinned := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	f.invoices.On("SweepOverdue", ctx, fixedNow).Return(&salesapp.SweepResult{Marked: 2}, nil)
	f.invoices.On("SweepOverdue", ctx, pinned).Return(&salesapp.SweepResult{Marked: 0}, nil)

	result, err := f.d.Dispatch(ctx, "invoice:sweepOverdue", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data.(*salesapp.SweepResult).Marked)

	result, err = f.d.Dispatch(ctx, "invoice:sweepOverdue", json.RawMessage(`{"at":"2026-01-31T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Data.(*salesapp.SweepResult).Marked)
}

func TestDispatch_CatalogSync(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	run := integration.NewSyncResult(fixedNow)
	run.Created = 3
	run.Finish(fixedNow.Add(time.Second))
	f.sync.On("SyncAll", ctx).Return(run, nil)

	result, err := f.d.Dispatch(ctx, "catalog:sync", nil)

	require.NoError(t, err)
	resp := result.Data.(integrationapp.SyncResponse)
	assert.Equal(t, integration.SyncStatusSuccess, resp.Status)
	assert.Equal(t, 3, resp.Created)
	assert.Equal(t, int64(1000), resp.DurationMs)
}

func TestDispatch_CatalogSyncNotConfigured(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.sync.On("SyncAll", ctx).Return(nil, shared.NewPreconditionError("remote catalog is not configured"))

	_, err := f.d.Dispatch(ctx, "catalog:sync", nil)

	assert.Equal(t, shared.KindPrecondition, shared.KindOf(err))
}

func TestDispatch_MediaUploadPointsToMultipart(t *testing.T) {
	_, err := newFixture().d.Dispatch(context.Background(), "media:upload", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/v1/media")
}

func TestDispatch_ClientDeleteMany(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	f.clients.On("DeleteMany", ctx, ids).Return(int64(2), nil)

	body, _ := json.Marshal(map[string]any{"ids": ids})
	result, err := f.d.Dispatch(ctx, "client:deleteMany", body)

	require.NoError(t, err)
	assert.Equal(t, int64(2), *result.Count)

	_, err = f.d.Dispatch(ctx, "client:deleteMany", json.RawMessage(`{"ids":[]}`))
	status, resp := dto.FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "must be at least 1", resp.Details["ids"])
	f.clients.AssertNumberOfCalls(t, "DeleteMany", 1)
}

func TestHandle_DuplicatePanics(t *testing.T) {
	d := NewDispatcher(nil)
	Handle(d, "x", func(context.Context, EmptyPayload) (Result, error) { return Result{}, nil })

	assert.Panics(t, func() {
		Handle(d, "x", func(context.Context, EmptyPayload) (Result, error) { return Result{}, nil })
	})
}
