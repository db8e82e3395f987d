package persistence

import (
	"github.com/atelier/backend/internal/domain/partner"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	*GormRepository[partner.Client]
}

// NewGormClientRepository creates a new GORM client repository
func NewGormClientRepository(db *Database) *GormClientRepository {
	return &GormClientRepository{newGormRepository[partner.Client](db.store(), tableSpec{
		resource:     "client",
		searchFields: []string{"name", "email", "phone", "tax_id"},
		sortFields:   ClientSortFields,
		filterFields: ClientFilterFields,
		defaultSort:  "name",
	})}
}

// GormEmployeeRepository implements partner.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	*GormRepository[partner.Employee]
}

// NewGormEmployeeRepository creates a new GORM employee repository
func NewGormEmployeeRepository(db *Database) *GormEmployeeRepository {
	return &GormEmployeeRepository{newGormRepository[partner.Employee](db.store(), tableSpec{
		resource:     "employee",
		searchFields: []string{"first_name", "last_name", "email", "role"},
		sortFields:   EmployeeSortFields,
		filterFields: EmployeeFilterFields,
		defaultSort:  "last_name",
	})}
}

var (
	_ partner.ClientRepository   = (*GormClientRepository)(nil)
	_ partner.EmployeeRepository = (*GormEmployeeRepository)(nil)
)
