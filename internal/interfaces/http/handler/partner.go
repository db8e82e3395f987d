package handler

import (
	"net/http"

	partnerapp "github.com/atelier/backend/internal/application/partner"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartnerHandler exposes clients and employees
type PartnerHandler struct {
	BaseHandler
	clients   command.ClientService
	employees command.EmployeeService
}

// NewPartnerHandler creates a PartnerHandler
func NewPartnerHandler(clients command.ClientService, employees command.EmployeeService, v *dto.Validator) *PartnerHandler {
	return &PartnerHandler{BaseHandler: newBase(v), clients: clients, employees: employees}
}

// ListClients GET /api/v1/clients
func (h *PartnerHandler) ListClients(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.clients.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetClient GET /api/v1/clients/:id
func (h *PartnerHandler) GetClient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, client, err)
}

// CreateClient POST /api/v1/clients
func (h *PartnerHandler) CreateClient(c *gin.Context) {
	var req partnerapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, client, err)
}

// UpdateClient PUT /api/v1/clients/:id
func (h *PartnerHandler) UpdateClient(c *gin.Context) {
	var req partnerapp.UpdateClientRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, client, err)
}

// DeleteClient DELETE /api/v1/clients/:id
func (h *PartnerHandler) DeleteClient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Client deleted")
}

// DeleteClientsRequest names the clients to delete
type DeleteClientsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// DeleteManyClients POST /api/v1/clients/delete-many
func (h *PartnerHandler) DeleteManyClients(c *gin.Context) {
	var req DeleteClientsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	n, err := h.clients.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := dto.NewMessageResponse("Clients deleted")
	resp.Count = &n
	c.JSON(http.StatusOK, resp)
}

// ListEmployees GET /api/v1/employees
func (h *PartnerHandler) ListEmployees(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rows, total, err := h.employees.List(c.Request.Context(), filter)
	respondList(&h.BaseHandler, c, rows, total, err)
}

// GetEmployee GET /api/v1/employees/:id
func (h *PartnerHandler) GetEmployee(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	employee, err := h.employees.GetByID(c.Request.Context(), id)
	respond(&h.BaseHandler, c, false, employee, err)
}

// CreateEmployee POST /api/v1/employees
func (h *PartnerHandler) CreateEmployee(c *gin.Context) {
	var req partnerapp.CreateEmployeeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, true, employee, err)
}

// UpdateEmployee PUT /api/v1/employees/:id
func (h *PartnerHandler) UpdateEmployee(c *gin.Context) {
	var req partnerapp.UpdateEmployeeRequest
	if !h.bindJSONWithID(c, &req, func(id uuid.UUID) { req.ID = id }) {
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, employee, err)
}

// DeleteEmployee DELETE /api/v1/employees/:id
func (h *PartnerHandler) DeleteEmployee(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Employee deleted")
}
