package handler

import (
	catalogapp "github.com/atelier/backend/internal/application/catalog"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler exposes products, categories, attributes, terms and tags
type CatalogHandler struct {
	BaseHandler
	products   command.ProductService
	categories command.CategoryService
	attributes command.AttributeService
	tags       command.TagService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(
	products command.ProductService,
	categories command.CategoryService,
	attributes command.AttributeService,
	tags command.TagService,
	v *dto.Validator,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: newBase(v),
		products:    products,
		categories:  categories,
		attributes:  attributes,
		tags:        tags,
	}
}

// respond writes data, or the error when err is set
func respond[T any](h *BaseHandler, c *gin.Context, created bool, data T, err error) {
	switch {
	case err != nil:
		h.HandleError(c, err)
	case created:
		h.Created(c, data)
	default:
		h.Success(c, data)
	}
}

func respondList[T any](h *BaseHandler, c *gin.Context, rows []T, total int64, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	h.List(c, rows, total)
}

func (h *CatalogHandler) deleted(c *gin.Context, del func(uuid.UUID) error, msg string) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := del(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, msg)
}

// ListProducts GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.products.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetProduct GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, product, err)
}

// ListVariations GET /api/v1/products/:id/variations
func (h *CatalogHandler) ListVariations(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.products.ListVariations(c.Request.Context(), id)
	respondList(&h.BaseHandler, c, rows, int64(len(rows)), err)
}

// CreateProduct POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, product, err)
}

// UpdateProduct PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req catalogapp.UpdateProductRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, product, err)
}

// DeleteProduct DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	h.deleted(c, func(id uuid.UUID) error { return h.products.Delete(c.Request.Context(), id) }, "Product deleted")
}

// ListCategories GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.categories.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetCategory GET /api/v1/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, category, err)
}

// CreateCategory POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, category, err)
}

// UpdateCategory PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req catalogapp.UpdateCategoryRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, category, err)
}

// DeleteCategory DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	h.deleted(c, func(id uuid.UUID) error { return h.categories.Delete(c.Request.Context(), id) }, "Category deleted")
}

// ListAttributes GET /api/v1/attributes
func (h *CatalogHandler) ListAttributes(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.attributes.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetAttribute GET /api/v1/attributes/:id
func (h *CatalogHandler) GetAttribute(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	attribute, err := h.attributes.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, attribute, err)
}

// CreateAttribute POST /api/v1/attributes
func (h *CatalogHandler) CreateAttribute(c *gin.Context) {
	var req catalogapp.CreateAttributeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	attribute, err := h.attributes.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, attribute, err)
}

// UpdateAttribute PUT /api/v1/attributes/:id
func (h *CatalogHandler) UpdateAttribute(c *gin.Context) {
	var req catalogapp.UpdateAttributeRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	attribute, err := h.attributes.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, attribute, err)
}

// DeleteAttribute DELETE /api/v1/attributes/:id
func (h *CatalogHandler) DeleteAttribute(c *gin.Context) {
	h.deleted(c, func(id uuid.UUID) error { return h.attributes.Delete(c.Request.Context(), id) }, "Attribute deleted")
}

// ListTerms GET /api/v1/attributes/:id/terms
func (h *CatalogHandler) ListTerms(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.attributes.ListTerms(c.Request.Context(), id)
	respondList(&h.BaseHandler, c, rows, int64(len(rows)), err)
}

// CreateTerm POST /api/v1/attributes/:id/terms
func (h *CatalogHandler) CreateTerm(c *gin.Context) {
	var req catalogapp.CreateTermRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.AttributeID = id }) {
		return
	}
	term, err := h.attributes.CreateTerm(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, term, err)
}

// UpdateTerm PUT /api/v1/terms/:id
func (h *CatalogHandler) UpdateTerm(c *gin.Context) {
	var req catalogapp.UpdateTermRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	term, err := h.attributes.UpdateTerm(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, term, err)
}

// DeleteTerm DELETE /api/v1/terms/:id
func (h *CatalogHandler) DeleteTerm(c *gin.Context) {
	h.deleted(c, func(id uuid.UUID) error { return h.attributes.DeleteTerm(c.Request.Context(), id) }, "Term deleted")
}

// ListTags GET /api/v1/tags
func (h *CatalogHandler) ListTags(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.tags.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetTag GET /api/v1/tags/:id
func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.tags.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, tag, err)
}

// CreateTag POST /api/v1/tags
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req catalogapp.CreateTagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, tag, err)
}

// UpdateTag PUT /api/v1/tags/:id
func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	var req catalogapp.UpdateTagRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, tag, err)
}

// DeleteTag DELETE /api/v1/tags/:id
func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	h.deleted(c, func(id uuid.UUID) error { return h.tags.Delete(c.Request.Context(), id) }, "Tag deleted")
}
