package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	integrationapp "github.com/atelier/backend/internal/application/integration"
	salesapp "github.com/atelier/backend/internal/application/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/scheduler"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	binding.Validator = dto.NewValidator()
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// mocks

type mockQuotes struct {
	command.QuoteService
	mock.Mock
}

func (m *mockQuotes) Create(ctx context.Context, req salesapp.CreateQuoteRequest) (*salesapp.QuoteResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.QuoteResult), args.Error(1)
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

func (m *mockQuotes) ChangeStatus(ctx context.Context, req salesapp.ChangeQuoteStatusRequest) (*salesapp.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.QuoteResponse), args.Error(1)
}

func (m *mockQuotes) Promote(ctx context.Context, req salesapp.PromoteQuoteRequest) (*salesapp.InvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.InvoiceResponse), args.Error(1)
}

type mockInvoices struct {
	command.InvoiceService
	mock.Mock
}

func (m *mockInvoices) FindOverdue(ctx context.Context, now time.Time) ([]salesapp.InvoiceResponse, error) {
	args := m.Called(ctx, now)
	rows, _ := args.Get(0).([]salesapp.InvoiceResponse)
	return rows, args.Error(1)
}

func (m *mockInvoices) SweepOverdue(ctx context.Context, now time.Time) (*salesapp.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(*salesapp.SweepResult), args.Error(1)
}

type mockAttributes struct {
	command.AttributeService
	mock.Mock
}

func (m *mockAttributes) CreateTerm(ctx context.Context, req catalogapp.CreateTermRequest) (*catalogapp.TermResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.TermResponse), args.Error(1)
}

func (m *mockAttributes) ListTerms(ctx context.Context, attributeID uuid.UUID) ([]catalogapp.TermResponse, error) {
	args := m.Called(ctx, attributeID)
	rows, _ := args.Get(0).([]catalogapp.TermResponse)
	return rows, args.Error(1)
}

type mockClients struct {
	command.ClientService
	mock.Mock
}

func (m *mockClients) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClients) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSync struct {
	command.SyncService
	mock.Mock
}

func (m *mockSync) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*integrationapp.MediaResponse, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, filename, contentType, string(data))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.MediaResponse), args.Error(1)
}

type fakeAuthenticator struct {
	loggedOut *auth.Claims
}

func (f *fakeAuthenticator) Login(_ context.Context, username, password string) (*auth.Token, error) {
	if username != "admin" || password != "s3cret" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Token{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (f *fakeAuthenticator) Logout(claims *auth.Claims) { f.loggedOut = claims }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type jobs []scheduler.Snapshot

func (j jobs) Status() []scheduler.Snapshot { return j }

// command boundary

func newCommandRouter(t *testing.T) *gin.Engine {
	t.Helper()
	v := dto.NewValidator()
	d := command.NewDispatcher(v)
	type echo struct {
		Name string `json:"name" binding:"required"`
	}
	command.Handle(d, "echo:run", func(_ context.Context, p echo) (command.Result, error) {
		return command.Data(map[string]string{"name": p.Name}), nil
	})
	command.Handle(d, "boom:run", func(context.Context, command.EmptyPayload) (command.Result, error) {
		return command.Result{}, errors.New("disk on fire")
	})
	command.Handle(d, "slow:run", func(ctx context.Context, _ command.EmptyPayload) (command.Result, error) {
		<-ctx.Done()
		return command.Result{}, ctx.Err()
	})

	h := NewCommandHandler(d, v)
	r := gin.New()
	r.GET("/api/v1/commands", h.Names)
	r.POST("/api/v1/commands/:name", middleware.Timeout(20*time.Millisecond), h.Execute)
	return r
}

func TestCommandHandler_Execute(t *testing.T) {
	r := newCommandRouter(t)

	w := do(r, http.MethodPost, "/api/v1/commands/echo:run", `{"name":"Amira"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"name":"Amira"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/commands/echo:run", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "is required", decode(t, w).Details["name"])

	w = do(r, http.MethodPost, "/api/v1/commands/echo:run", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error)

	w = do(r, http.MethodPost, "/api/v1/commands/nope:run", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeUnknownCmd, decode(t, w).Error)
}

func TestCommandHandler_InternalErrorHidden(t *testing.T) {
	w := do(newCommandRouter(t), http.MethodPost, "/api/v1/commands/boom:run", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestCommandHandler_Timeout(t *testing.T) {
	w := do(newCommandRouter(t), http.MethodPost, "/api/v1/commands/slow:run", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, dto.ErrCodeTimeout, decode(t, w).Error)
}

func TestCommandHandler_Names(t *testing.T) {
	w := do(newCommandRouter(t), http.MethodGet, "/api/v1/commands", "")
	resp := decode(t, w)
	require.NotNil(t, resp.Count)
	assert.Equal(t, int64(3), *resp.Count)
}

// sales

func newQuoteRouter(quotes *mockQuotes) *gin.Engine {
	h := NewQuoteHandler(quotes, nil)
	r := gin.New()
	r.GET("/quotes", h.List)
	r.POST("/quotes", h.Create)
	r.GET("/quotes/:id", h.Get)
	r.POST("/quotes/:id/status", h.ChangeStatus)
	r.POST("/quotes/:id/promote", h.Promote)
	return r
}

func TestQuoteHandler_Create(t *testing.T) {
	quotes := new(mockQuotes)
	clientID, productID := uuid.New(), uuid.New()
	quotes.On("Create", mock.Anything, mock.MatchedBy(func(req salesapp.CreateQuoteRequest) bool {
		return req.ClientID == clientID && len(req.Lines) == 1 && req.Lines[0].Quantity == 2
	})).Return(&salesapp.QuoteResult{Quote: salesapp.QuoteResponse{Ref: "DEV-2026-0001"}}, nil)

	body := `{"client_id":"` + clientID.String() + `","lines":[{"product_id":"` + productID.String() + `","quantity":2}]}`
	w := do(newQuoteRouter(quotes), http.MethodPost, "/quotes", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "DEV-2026-0001")
	quotes.AssertExpectations(t)
}

func TestQuoteHandler_CreateValidation(t *testing.T) {
	quotes := new(mockQuotes)
	w := do(newQuoteRouter(quotes), http.MethodPost, "/quotes",
		`{"client_id":"`+uuid.NewString()+`","lines":[{"product_id":"`+uuid.NewString()+`","quantity":0}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error)
	assert.Equal(t, "must be greater than 0", resp.Details["quantity"])
	quotes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuoteHandler_Get(t *testing.T) {
	quotes := new(mockQuotes)
	id := uuid.New()
	quotes.On("GetByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("quote", id))
	r := newQuoteRouter(quotes)

	w := do(r, http.MethodGet, "/quotes/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)

	w = do(r, http.MethodGet, "/quotes/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a valid UUID", decode(t, w).Details["id"])
}

func TestQuoteHandler_ListParsesClientID(t *testing.T) {
	quotes := new(mockQuotes)
	clientID := uuid.New()
	quotes.On("List", mock.Anything, mock.MatchedBy(func(f salesapp.ListFilter) bool {
		return f.Status == "active" && f.ClientID != nil && *f.ClientID == clientID && f.Page == 2
	})).Return([]salesapp.QuoteResponse{{Ref: "DEV-2026-0002"}}, int64(11), nil)
	r := newQuoteRouter(quotes)

	w := do(r, http.MethodGet, "/quotes?status=active&page=2&client_id="+clientID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Count)
	assert.Equal(t, int64(11), *resp.Count)

	w = do(r, http.MethodGet, "/quotes?client_id=xyz", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/quotes?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_PathIDFillsRequest(t *testing.T) {
	quotes := new(mockQuotes)
	id := uuid.New()
	quotes.On("ChangeStatus", mock.Anything, salesapp.ChangeQuoteStatusRequest{ID: id, Status: "accepted"}).
		Return(nil, shared.NewInvalidTransitionError("quote", "expired", "accepted"))
	quotes.On("Promote", mock.Anything, mock.MatchedBy(func(req salesapp.PromoteQuoteRequest) bool {
		return req.QuoteID == id && req.Notes == "thanks"
	})).Return(&salesapp.InvoiceResponse{Ref: "FAC-2026-0001"}, nil)
	r := newQuoteRouter(quotes)

	w := do(r, http.MethodPost, "/quotes/"+id.String()+"/status", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/quotes/"+id.String()+"/status", `{"status":"sent"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/quotes/"+id.String()+"/promote", `{"notes":"thanks"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "FAC-2026-0001")
	quotes.AssertExpectations(t)
}

func TestInvoiceHandler_OverdueAt(t *testing.T) {
	invoices := new(mockInvoices)
	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fixed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	invoices.On("FindOverdue", mock.Anything, at).Return(nil, nil)
	invoices.On("SweepOverdue", mock.Anything, fixed).Return(&salesapp.SweepResult{Marked: 3}, nil)

	h := NewInvoiceHandler(invoices, nil)
	h.now = func() time.Time { return fixed }
	r := gin.New()
	r.GET("/invoices/overdue", h.Overdue)
	r.POST("/invoices/sweep-overdue", h.SweepOverdue)

	w := do(r, http.MethodGet, "/invoices/overdue?at=2026-06-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"rows":[],"count":0}`, w.Body.String())

	w = do(r, http.MethodPost, "/invoices/sweep-overdue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"marked":3}}`, w.Body.String())

	w = do(r, http.MethodGet, "/invoices/overdue?at=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	invoices.AssertExpectations(t)
}

// catalog

func TestCatalogHandler_Terms(t *testing.T) {
	attributes := new(mockAttributes)
	attrID := uuid.New()
	attributes.On("CreateTerm", mock.Anything, catalogapp.CreateTermRequest{AttributeID: attrID, Name: "Rouge"}).
		Return(&catalogapp.TermResponse{AttributeID: attrID, Name: "Rouge", Slug: "rouge"}, nil)
	attributes.On("ListTerms", mock.Anything, attrID).Return(nil, nil)

	h := NewCatalogHandler(nil, nil, attributes, nil, nil)
	r := gin.New()
	r.POST("/attributes/:id/terms", h.CreateTerm)
	r.GET("/attributes/:id/terms", h.ListTerms)

	w := do(r, http.MethodPost, "/attributes/"+attrID.String()+"/terms", `{"name":"Rouge"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"slug":"rouge"`)

	w = do(r, http.MethodGet, "/attributes/"+attrID.String()+"/terms", "")
	assert.JSONEq(t, `{"success":true,"rows":[],"count":0}`, w.Body.String())

	w = do(r, http.MethodPost, "/attributes/"+attrID.String()+"/terms", `{"name":"Rouge","extra":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	attributes.AssertExpectations(t)
}

// partner

func TestPartnerHandler_DeleteMany(t *testing.T) {
	clients := new(mockClients)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	clients.On("DeleteMany", mock.Anything, ids).Return(int64(2), nil)

	h := NewPartnerHandler(clients, nil, nil)
	r := gin.New()
	r.POST("/clients/delete-many", h.DeleteManyClients)

	body, _ := json.Marshal(DeleteClientsRequest{IDs: ids})
	w := do(r, http.MethodPost, "/clients/delete-many", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Count)
	assert.Equal(t, int64(2), *resp.Count)

	w = do(r, http.MethodPost, "/clients/delete-many", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/clients/delete-many", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	clients.AssertExpectations(t)
}

func TestPartnerHandler_DeleteConflict(t *testing.T) {
	clients := new(mockClients)
	id := uuid.New()
	clients.On("Delete", mock.Anything, id).Return(shared.NewConflictError("client has documents"))

	h := NewPartnerHandler(clients, nil, nil)
	r := gin.New()
	r.DELETE("/clients/:id", h.DeleteClient)

	w := do(r, http.MethodDelete, "/clients/"+id.String(), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "client has documents", decode(t, w).Message)
}

// media

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMediaHandler_Upload(t *testing.T) {
	sync := new(mockSync)
	sync.On("UploadMedia", mock.Anything, "robe.jpg", "application/octet-stream", "jpegbytes").
		Return(&integrationapp.MediaResponse{ID: 42, SourceURL: "https://shop.example/robe.jpg"}, nil)

	h := NewMediaHandler(sync, nil)
	r := gin.New()
	r.POST("/media", h.Upload)

	body, contentType := multipartBody(t, "file", "robe.jpg", "jpegbytes")
	req := httptest.NewRequest(http.MethodPost, "/media", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":42`)

	body, contentType = multipartBody(t, "", "", "")
	req = httptest.NewRequest(http.MethodPost, "/media", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file is required", decode(t, w).Details["file"])
	sync.AssertExpectations(t)
}

func TestMediaHandler_NotConfigured(t *testing.T) {
	r := gin.New()
	r.POST("/media", NewMediaHandler(nil, nil).Upload)
	w := do(r, http.MethodPost, "/media", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

// auth

func TestAuthHandler(t *testing.T) {
	authenticator := &fakeAuthenticator{}
	h := NewAuthHandler(authenticator, nil)
	claims := &auth.Claims{Username: "admin"}

	r := gin.New()
	r.POST("/login", h.Login)
	r.POST("/logout", func(c *gin.Context) { middleware.SetClaims(c, claims) }, h.Logout)
	r.GET("/me", h.Me)

	w := do(r, http.MethodPost, "/login", `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)

	w = do(r, http.MethodPost, "/login", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error)

	w = do(r, http.MethodPost, "/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, claims, authenticator.loggedOut)

	w = do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// health

func TestHealthHandler(t *testing.T) {
	status := jobs{{Task: scheduler.TaskOverdueSweep, Status: scheduler.JobStatusSuccess}}

	r := gin.New()
	r.GET("/ok", NewHealthHandler(pinger{}, status, "1.2.3").Check)
	r.GET("/down", NewHealthHandler(pinger{err: errors.New("closed")}, nil, "1.2.3").Check)

	w := do(r, http.MethodGet, "/ok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)
	assert.Contains(t, w.Body.String(), scheduler.TaskOverdueSweep)

	w = do(r, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, w.Body.String(), `"database":"down"`)
}
