package handler

import (
	"time"

	salesapp "github.com/atelier/backend/internal/application/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteHandler exposes quotes over REST
type QuoteHandler struct {
	BaseHandler
	quotes command.QuoteService
}

// NewQuoteHandler creates a QuoteHandler
func NewQuoteHandler(quotes command.QuoteService, v *dto.Validator) *QuoteHandler {
	return &QuoteHandler{BaseHandler: newBase(v), quotes: quotes}
}

// Create POST /api/v1/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req salesapp.CreateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.quotes.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get GET /api/v1/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// List GET /api/v1/quotes
func (h *QuoteHandler) List(c *gin.Context) {
	filter, ok := h.salesFilter(c)
	if !ok {
		return
	}
	rows, total, err := h.quotes.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, rows, total)
}

// Update PUT /api/v1/quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	var req salesapp.UpdateQuoteRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	result, err := h.quotes.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus POST /api/v1/quotes/:id/status
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	var req salesapp.ChangeQuoteStatusRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	quote, err := h.quotes.ChangeStatus(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Promote POST /api/v1/quotes/:id/promote
func (h *QuoteHandler) Promote(c *gin.Context) {
	var req salesapp.PromoteQuoteRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.QuoteID = id }) {
		return
	}
	invoice, err := h.quotes.Promote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Delete DELETE /api/v1/quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Quote deleted")
}

// InvoiceHandler exposes invoices over REST
type InvoiceHandler struct {
	BaseHandler
	invoices command.InvoiceService
	now      func() time.Time
}

// NewInvoiceHandler creates an InvoiceHandler
func NewInvoiceHandler(invoices command.InvoiceService, v *dto.Validator) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: newBase(v), invoices: invoices, now: time.Now}
}

// Create POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req salesapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, ok := h.salesFilter(c)
	if !ok {
		return
	}
	rows, total, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, rows, total)
}

// ChangeStatus POST /api/v1/invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	var req salesapp.ChangeInvoiceStatusRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	invoice, err := h.invoices.ChangeStatus(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Overdue GET /api/v1/invoices/overdue?at=RFC3339
func (h *InvoiceHandler) Overdue(c *gin.Context) {
	at, ok := h.instant(c)
	if !ok {
		return
	}
	rows, err := h.invoices.FindOverdue(c.Request.Context(), at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if rows == nil {
		rows = []salesapp.InvoiceResponse{}
	}
	h.BaseHandler.List(c, rows, int64(len(rows)))
}

// SweepOverdue POST /api/v1/invoices/sweep-overdue?at=RFC3339
func (h *InvoiceHandler) SweepOverdue(c *gin.Context) {
	at, ok := h.instant(c)
	if !ok {
		return
	}
	result, err := h.invoices.SweepOverdue(c.Request.Context(), at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Invoice deleted")
}

// instant reads the optional "at" query parameter, defaulting to now
func (h *InvoiceHandler) instant(c *gin.Context) (time.Time, bool) {
	raw := c.Query("at")
	if raw == "" {
		return h.now(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.HandleError(c, shared.NewValidationError("at", "must be an RFC3339 timestamp"))
		return time.Time{}, false
	}
	return at, true
}

// salesFilter binds the list query; client_id is parsed by hand as a uuid
func (h *BaseHandler) salesFilter(c *gin.Context) (salesapp.ListFilter, bool) {
	var filter salesapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return filter, false
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.HandleError(c, shared.NewValidationError("client_id", "must be a valid UUID"))
			return filter, false
		}
		filter.ClientID = &id
	}
	return filter, true
}
