package command

import (
	"context"
	"io"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	integrationapp "github.com/atelier/backend/internal/application/integration"
	partnerapp "github.com/atelier/backend/internal/application/partner"
	salesapp "github.com/atelier/backend/internal/application/sales"
	settingsapp "github.com/atelier/backend/internal/application/settings"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// QuoteService is the quote lifecycle as seen from the boundary
type QuoteService interface {
	Create(ctx context.Context, req salesapp.CreateQuoteRequest) (*salesapp.QuoteResult, error)
	Update(ctx context.Context, req salesapp.UpdateQuoteRequest) (*salesapp.QuoteResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*salesapp.QuoteResponse, error)
	List(ctx context.Context, filter salesapp.ListFilter) ([]salesapp.QuoteResponse, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, req salesapp.ChangeQuoteStatusRequest) (*salesapp.QuoteResponse, error)
	Promote(ctx context.Context, req salesapp.PromoteQuoteRequest) (*salesapp.InvoiceResponse, error)
}

// InvoiceService is the invoice lifecycle as seen from the boundary
type InvoiceService interface {
	Create(ctx context.Context, req salesapp.CreateInvoiceRequest) (*salesapp.InvoiceResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*salesapp.InvoiceResponse, error)
	List(ctx context.Context, filter salesapp.ListFilter) ([]salesapp.InvoiceResponse, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, req salesapp.ChangeInvoiceStatusRequest) (*salesapp.InvoiceResponse, error)
	FindOverdue(ctx context.Context, now time.Time) ([]salesapp.InvoiceResponse, error)
	SweepOverdue(ctx context.Context, now time.Time) (*salesapp.SweepResult, error)
}

// ProductService manages local products
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductDetailResponse, error)
	List(ctx context.Context, filter catalogapp.ListFilter) ([]catalogapp.ProductResponse, int64, error)
	ListVariations(ctx context.Context, productID uuid.UUID) ([]catalogapp.VariationResponse, error)
	Update(ctx context.Context, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService manages local categories
type CategoryService interface {
	Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error)
	List(ctx context.Context, filter catalogapp.ListFilter) ([]catalogapp.CategoryResponse, int64, error)
	Update(ctx context.Context, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttributeService manages attributes and their terms
type AttributeService interface {
	Create(ctx context.Context, req catalogapp.CreateAttributeRequest) (*catalogapp.AttributeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.AttributeResponse, error)
	List(ctx context.Context, filter catalogapp.ListFilter) ([]catalogapp.AttributeResponse, int64, error)
	Update(ctx context.Context, req catalogapp.UpdateAttributeRequest) (*catalogapp.AttributeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateTerm(ctx context.Context, req catalogapp.CreateTermRequest) (*catalogapp.TermResponse, error)
	ListTerms(ctx context.Context, attributeID uuid.UUID) ([]catalogapp.TermResponse, error)
	UpdateTerm(ctx context.Context, req catalogapp.UpdateTermRequest) (*catalogapp.TermResponse, error)
	DeleteTerm(ctx context.Context, id uuid.UUID) error
}

// TagService manages local tags
type TagService interface {
	Create(ctx context.Context, req catalogapp.CreateTagRequest) (*catalogapp.TagResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.TagResponse, error)
	List(ctx context.Context, filter catalogapp.ListFilter) ([]catalogapp.TagResponse, int64, error)
	Update(ctx context.Context, req catalogapp.UpdateTagRequest) (*catalogapp.TagResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SyncService reconciles the catalog with the remote store
type SyncService interface {
	SyncAll(ctx context.Context) (*integration.SyncResult, error)
	SyncAttributes(ctx context.Context) (*integration.SyncResult, error)
	SyncTags(ctx context.Context) (*integration.SyncResult, error)
	PullProducts(ctx context.Context) (*integration.SyncResult, error)
	PullCategories(ctx context.Context) (*integration.SyncResult, error)
	UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*integrationapp.MediaResponse, error)
}

// ClientService manages clients
type ClientService interface {
	Create(ctx context.Context, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.ClientResponse, error)
	List(ctx context.Context, filter partnerapp.ListFilter) ([]partnerapp.ClientResponse, int64, error)
	Update(ctx context.Context, req partnerapp.UpdateClientRequest) (*partnerapp.ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// EmployeeService manages employees
type EmployeeService interface {
	Create(ctx context.Context, req partnerapp.CreateEmployeeRequest) (*partnerapp.EmployeeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.EmployeeResponse, error)
	List(ctx context.Context, filter partnerapp.ListFilter) ([]partnerapp.EmployeeResponse, int64, error)
	Update(ctx context.Context, req partnerapp.UpdateEmployeeRequest) (*partnerapp.EmployeeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsService reads and updates business settings
type SettingsService interface {
	Get(ctx context.Context) (*settings.Settings, error)
	Update(ctx context.Context, req settingsapp.UpdateSettingsRequest) (*settings.Settings, error)
}

// Services bundles everything the commands call
type Services struct {
	Quotes     QuoteService
	Invoices   InvoiceService
	Products   ProductService
	Categories CategoryService
	Attributes AttributeService
	Tags       TagService
	Sync       SyncService
	Clients    ClientService
	Employees  EmployeeService
	Settings   SettingsService
	Now        func() time.Time
}

var (
	_ QuoteService     = (*salesapp.QuoteService)(nil)
	_ InvoiceService   = (*salesapp.InvoiceService)(nil)
	_ ProductService   = (*catalogapp.ProductService)(nil)
	_ CategoryService  = (*catalogapp.CategoryService)(nil)
	_ AttributeService = (*catalogapp.AttributeService)(nil)
	_ TagService       = (*catalogapp.TagService)(nil)
	_ SyncService      = (*integrationapp.CatalogSyncService)(nil)
	_ ClientService    = (*partnerapp.ClientService)(nil)
	_ EmployeeService  = (*partnerapp.EmployeeService)(nil)
	_ SettingsService  = (*settingsapp.Service)(nil)
)
