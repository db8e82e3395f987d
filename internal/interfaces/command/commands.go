package command

import (
	"context"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	integrationapp "github.com/atelier/backend/internal/application/integration"
	partnerapp "github.com/atelier/backend/internal/application/partner"
	salesapp "github.com/atelier/backend/internal/application/sales"
	settingsapp "github.com/atelier/backend/internal/application/settings"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// IDPayload addresses one record
type IDPayload struct {
	ID uuid.UUID `json:"id" binding:"required"`
}

// IDsPayload addresses several records
type IDsPayload struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// AtPayload optionally pins the reference time of a time-based query
type AtPayload struct {
	At *time.Time `json:"at"`
}

// TermListPayload selects the terms of one attribute
type TermListPayload struct {
	AttributeID uuid.UUID `json:"attribute_id" binding:"required"`
}

// EmptyPayload is for commands that take no input
type EmptyPayload struct{}

// Register wires every command name to its operation
func Register(d *Dispatcher, s Services) {
	if s.Now == nil {
		s.Now = time.Now
	}
	registerSales(d, s)
	registerCatalog(d, s)
	registerSync(d, s)
	registerPartners(d, s)
	registerSettings(d, s)
}

func registerSales(d *Dispatcher, s Services) {
	Handle(d, "quote:create", func(ctx context.Context, p salesapp.CreateQuoteRequest) (Result, error) {
		return dataOf(s.Quotes.Create(ctx, p))
	})
	Handle(d, "quote:update", func(ctx context.Context, p salesapp.UpdateQuoteRequest) (Result, error) {
		return dataOf(s.Quotes.Update(ctx, p))
	})
	Handle(d, "quote:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Quotes.GetByID(ctx, p.ID))
	})
	Handle(d, "quote:list", func(ctx context.Context, p salesapp.ListFilter) (Result, error) {
		return rowsOf(s.Quotes.List(ctx, p))
	})
	Handle(d, "quote:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Quotes.Delete(ctx, p.ID), "Quote deleted")
	})
	Handle(d, "quote:changeStatus", func(ctx context.Context, p salesapp.ChangeQuoteStatusRequest) (Result, error) {
		return dataOf(s.Quotes.ChangeStatus(ctx, p))
	})
	Handle(d, "quote:promote", func(ctx context.Context, p salesapp.PromoteQuoteRequest) (Result, error) {
		return dataOf(s.Quotes.Promote(ctx, p))
	})

	Handle(d, "invoice:create", func(ctx context.Context, p salesapp.CreateInvoiceRequest) (Result, error) {
		return dataOf(s.Invoices.Create(ctx, p))
	})
	Handle(d, "invoice:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Invoices.GetByID(ctx, p.ID))
	})
	Handle(d, "invoice:list", func(ctx context.Context, p salesapp.ListFilter) (Result, error) {
		return rowsOf(s.Invoices.List(ctx, p))
	})
	Handle(d, "invoice:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Invoices.Delete(ctx, p.ID), "Invoice deleted")
	})
	Handle(d, "invoice:changeStatus", func(ctx context.Context, p salesapp.ChangeInvoiceStatusRequest) (Result, error) {
		return dataOf(s.Invoices.ChangeStatus(ctx, p))
	})
	Handle(d, "invoice:overdue", func(ctx context.Context, p AtPayload) (Result, error) {
		invoices, err := s.Invoices.FindOverdue(ctx, p.time(s.Now))
		if err != nil {
			return Result{}, err
		}
		return Rows(invoices, int64(len(invoices))), nil
	})
	Handle(d, "invoice:sweepOverdue", func(ctx context.Context, p AtPayload) (Result, error) {
		return dataOf(s.Invoices.SweepOverdue(ctx, p.time(s.Now)))
	})
}

func registerCatalog(d *Dispatcher, s Services) {
	Handle(d, "product:list", func(ctx context.Context, p catalogapp.ListFilter) (Result, error) {
		return rowsOf(s.Products.List(ctx, p))
	})
	Handle(d, "product:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Products.GetByID(ctx, p.ID))
	})
	Handle(d, "product:variations", func(ctx context.Context, p IDPayload) (Result, error) {
		variations, err := s.Products.ListVariations(ctx, p.ID)
		return rowsOf(variations, int64(len(variations)), err)
	})
	Handle(d, "product:create", func(ctx context.Context, p catalogapp.CreateProductRequest) (Result, error) {
		return dataOf(s.Products.Create(ctx, p))
	})
	Handle(d, "product:update", func(ctx context.Context, p catalogapp.UpdateProductRequest) (Result, error) {
		return dataOf(s.Products.Update(ctx, p))
	})
	Handle(d, "product:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Products.Delete(ctx, p.ID), "Product deleted")
	})

	Handle(d, "category:list", func(ctx context.Context, p catalogapp.ListFilter) (Result, error) {
		return rowsOf(s.Categories.List(ctx, p))
	})
	Handle(d, "category:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Categories.GetByID(ctx, p.ID))
	})
	Handle(d, "category:create", func(ctx context.Context, p catalogapp.CreateCategoryRequest) (Result, error) {
		return dataOf(s.Categories.Create(ctx, p))
	})
	Handle(d, "category:update", func(ctx context.Context, p catalogapp.UpdateCategoryRequest) (Result, error) {
		return dataOf(s.Categories.Update(ctx, p))
	})
	Handle(d, "category:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Categories.Delete(ctx, p.ID), "Category deleted")
	})

	Handle(d, "attribute:list", func(ctx context.Context, p catalogapp.ListFilter) (Result, error) {
		return rowsOf(s.Attributes.List(ctx, p))
	})
	Handle(d, "attribute:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Attributes.GetByID(ctx, p.ID))
	})
	Handle(d, "attribute:create", func(ctx context.Context, p catalogapp.CreateAttributeRequest) (Result, error) {
		return dataOf(s.Attributes.Create(ctx, p))
	})
	Handle(d, "attribute:update", func(ctx context.Context, p catalogapp.UpdateAttributeRequest) (Result, error) {
		return dataOf(s.Attributes.Update(ctx, p))
	})
	Handle(d, "attribute:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Attributes.Delete(ctx, p.ID), "Attribute deleted")
	})

	Handle(d, "term:list", func(ctx context.Context, p TermListPayload) (Result, error) {
		terms, err := s.Attributes.ListTerms(ctx, p.AttributeID)
		if err != nil {
			return Result{}, err
		}
		return Rows(terms, int64(len(terms))), nil
	})
	Handle(d, "term:create", func(ctx context.Context, p catalogapp.CreateTermRequest) (Result, error) {
		return dataOf(s.Attributes.CreateTerm(ctx, p))
	})
	Handle(d, "term:update", func(ctx context.Context, p catalogapp.UpdateTermRequest) (Result, error) {
		return dataOf(s.Attributes.UpdateTerm(ctx, p))
	})
	Handle(d, "term:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Attributes.DeleteTerm(ctx, p.ID), "Term deleted")
	})

	Handle(d, "tag:list", func(ctx context.Context, p catalogapp.ListFilter) (Result, error) {
		return rowsOf(s.Tags.List(ctx, p))
	})
	Handle(d, "tag:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Tags.GetByID(ctx, p.ID))
	})
	Handle(d, "tag:create", func(ctx context.Context, p catalogapp.CreateTagRequest) (Result, error) {
		return dataOf(s.Tags.Create(ctx, p))
	})
	Handle(d, "tag:update", func(ctx context.Context, p catalogapp.UpdateTagRequest) (Result, error) {
		return dataOf(s.Tags.Update(ctx, p))
	})
	Handle(d, "tag:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Tags.Delete(ctx, p.ID), "Tag deleted")
	})
}

func registerSync(d *Dispatcher, s Services) {
	runs := map[string]func(SyncService, context.Context) (*integration.SyncResult, error){
		"catalog:sync":   SyncService.SyncAll,
		"attribute:sync": SyncService.SyncAttributes,
		"tag:sync":       SyncService.SyncTags,
		"product:pull":   SyncService.PullProducts,
		"category:pull":  SyncService.PullCategories,
	}
	for name, run := range runs {
		Handle(d, name, func(ctx context.Context, _ EmptyPayload) (Result, error) {
			result, err := run(s.Sync, ctx)
			if err != nil {
				return Result{}, err
			}
			return Data(integrationapp.ToSyncResponse(result)), nil
		})
	}

	// media bytes only travel as multipart on POST /api/v1/media
	Handle(d, "media:upload", func(context.Context, EmptyPayload) (Result, error) {
		return Result{}, shared.NewValidationError("", "media:upload takes multipart form data; use POST /api/v1/media")
	})
}

func registerPartners(d *Dispatcher, s Services) {
	Handle(d, "client:list", func(ctx context.Context, p partnerapp.ListFilter) (Result, error) {
		return rowsOf(s.Clients.List(ctx, p))
	})
	Handle(d, "client:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Clients.GetByID(ctx, p.ID))
	})
	Handle(d, "client:create", func(ctx context.Context, p partnerapp.CreateClientRequest) (Result, error) {
		return dataOf(s.Clients.Create(ctx, p))
	})
	Handle(d, "client:update", func(ctx context.Context, p partnerapp.UpdateClientRequest) (Result, error) {
		return dataOf(s.Clients.Update(ctx, p))
	})
	Handle(d, "client:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Clients.Delete(ctx, p.ID), "Client deleted")
	})
	Handle(d, "client:deleteMany", func(ctx context.Context, p IDsPayload) (Result, error) {
		n, err := s.Clients.DeleteMany(ctx, p.IDs)
		if err != nil {
			return Result{}, err
		}
		return Result{Count: &n, Message: "Clients deleted"}, nil
	})

	Handle(d, "employee:list", func(ctx context.Context, p partnerapp.ListFilter) (Result, error) {
		return rowsOf(s.Employees.List(ctx, p))
	})
	Handle(d, "employee:get", func(ctx context.Context, p IDPayload) (Result, error) {
		return dataOf(s.Employees.GetByID(ctx, p.ID))
	})
	Handle(d, "employee:create", func(ctx context.Context, p partnerapp.CreateEmployeeRequest) (Result, error) {
		return dataOf(s.Employees.Create(ctx, p))
	})
	Handle(d, "employee:update", func(ctx context.Context, p partnerapp.UpdateEmployeeRequest) (Result, error) {
		return dataOf(s.Employees.Update(ctx, p))
	})
	Handle(d, "employee:delete", func(ctx context.Context, p IDPayload) (Result, error) {
		return deleted(s.Employees.Delete(ctx, p.ID), "Employee deleted")
	})
}

func registerSettings(d *Dispatcher, s Services) {
	Handle(d, "settings:get", func(ctx context.Context, _ EmptyPayload) (Result, error) {
		return dataOf(s.Settings.Get(ctx))
	})
	Handle(d, "settings:update", func(ctx context.Context, p settingsapp.UpdateSettingsRequest) (Result, error) {
		return dataOf(s.Settings.Update(ctx, p))
	})
}

func (p AtPayload) time(now func() time.Time) time.Time {
	if p.At != nil {
		return *p.At
	}
	return now()
}

func dataOf[T any](v *T, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Data(v), nil
}

func rowsOf[T any](rows []T, count int64, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	if rows == nil {
		rows = []T{}
	}
	return Rows(rows, count), nil
}

func deleted(err error, msg string) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Message(msg), nil
}
