package partner

import (
	"time"

	"github.com/atelier/backend/internal/domain/partner"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Type    string `json:"type" binding:"omitempty,oneof=individual company"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Address string `json:"address" binding:"max=1000"`
	TaxID   string `json:"tax_id" binding:"max=50"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	ID      uuid.UUID `json:"id" binding:"required"`
	Name    *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Type    *string   `json:"type" binding:"omitempty,oneof=individual company"`
	Email   *string   `json:"email" binding:"omitempty,max=200"`
	Phone   *string   `json:"phone" binding:"omitempty,max=50"`
	Address *string   `json:"address" binding:"omitempty,max=1000"`
	TaxID   *string   `json:"tax_id" binding:"omitempty,max=50"`
	Notes   *string   `json:"notes" binding:"omitempty,max=2000"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Type      partner.ClientType `json:"type"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	TaxID     string             `json:"tax_id"`
	Notes     string             `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxID:     c.TaxID,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateEmployeeRequest represents a request to create a new employee
type CreateEmployeeRequest struct {
	FirstName string     `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string     `json:"last_name" binding:"required,min=1,max=100"`
	Email     string     `json:"email" binding:"omitempty,email,max=200"`
	Phone     string     `json:"phone" binding:"omitempty,max=50"`
	Role      string     `json:"role" binding:"max=100"`
	HiredAt   *time.Time `json:"hired_at"`
}

// UpdateEmployeeRequest represents a request to update an employee
type UpdateEmployeeRequest struct {
	ID        uuid.UUID  `json:"id" binding:"required"`
	FirstName *string    `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string    `json:"email" binding:"omitempty,max=200"`
	Phone     *string    `json:"phone" binding:"omitempty,max=50"`
	Role      *string    `json:"role" binding:"omitempty,max=100"`
	HiredAt   *time.Time `json:"hired_at"`
	Active    *bool      `json:"active"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	HiredAt   *time.Time `json:"hired_at,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToEmployeeResponse converts a domain Employee to EmployeeResponse
func ToEmployeeResponse(e *partner.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		FullName:  e.FullName(),
		Email:     e.Email,
		Phone:     e.Phone,
		Role:      e.Role,
		HiredAt:   e.HiredAt,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ListFilter selects a page of clients or employees
type ListFilter struct {
	Page     int            `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize int            `json:"page_size" form:"page_size" binding:"omitempty,min=1,max=500"`
	Search   string         `json:"search" form:"search"`
	OrderBy  string         `json:"order_by" form:"order_by"`
	OrderDir string         `json:"order_dir" form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Filters  map[string]any `json:"filters"`
}

func (f ListFilter) toDomain(defaultOrder string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = defaultOrder
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	for k, v := range f.Filters {
		filter = filter.Where(k, v)
	}
	return filter
}
