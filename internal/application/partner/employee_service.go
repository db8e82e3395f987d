package partner

import (
	"context"
	"strings"

	"github.com/atelier/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// EmployeeService handles employee records
type EmployeeService struct {
	employeeRepo partner.EmployeeRepository
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employeeRepo partner.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo}
}

// Create creates a new active employee
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := partner.NewEmployee(req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	employee.Email = strings.TrimSpace(req.Email)
	employee.Phone = strings.TrimSpace(req.Phone)
	employee.Role = strings.TrimSpace(req.Role)
	employee.HiredAt = req.HiredAt
	if err := employee.Validate(); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	resp := ToEmployeeResponse(employee)
	return &resp, nil
}

// GetByID retrieves an employee by ID
func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*EmployeeResponse, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(employee)
	return &resp, nil
}

// List retrieves a page of employees
func (s *EmployeeService) List(ctx context.Context, filter ListFilter) ([]EmployeeResponse, int64, error) {
	employees, total, err := s.employeeRepo.GetAll(ctx, filter.toDomain("last_name"))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]EmployeeResponse, len(employees))
	for i := range employees {
		responses[i] = ToEmployeeResponse(&employees[i])
	}
	return responses, total, nil
}

// Update updates an existing employee
func (s *EmployeeService) Update(ctx context.Context, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		employee.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		employee.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		employee.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		employee.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		employee.Role = strings.TrimSpace(*req.Role)
	}
	if req.HiredAt != nil {
		employee.HiredAt = req.HiredAt
	}
	if req.Active != nil {
		employee.Active = *req.Active
	}
	if err := employee.Validate(); err != nil {
		return nil, err
	}
	employee.Touch()

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		return nil, err
	}

	resp := ToEmployeeResponse(employee)
	return &resp, nil
}

// Delete deletes an employee
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.employeeRepo.Delete(ctx, id)
}
