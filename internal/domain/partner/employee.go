package partner

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
)

// Employee is a member of staff
type Employee struct {
	shared.BaseEntity
	FirstName string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string     `gorm:"type:varchar(100);not null;index" json:"last_name"`
	Email     string     `gorm:"type:varchar(200);index" json:"email"`
	Phone     string     `gorm:"type:varchar(50)" json:"phone"`
	Role      string     `gorm:"type:varchar(100)" json:"role"`
	HiredAt   *time.Time `json:"hired_at,omitempty"`
	Active    bool       `gorm:"not null;default:true" json:"active"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates a new active employee
func NewEmployee(firstName, lastName string) (*Employee, error) {
	e := &Employee{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		Active:     true,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// FullName returns "First Last"
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Validate checks the employee fields
func (e *Employee) Validate() error {
	if e.FirstName == "" {
		return shared.NewValidationError("first_name", "first name is required")
	}
	if e.LastName == "" {
		return shared.NewValidationError("last_name", "last name is required")
	}
	if e.Email != "" && !emailPattern.MatchString(e.Email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	if e.Phone != "" && !phonePattern.MatchString(e.Phone) {
		return shared.NewValidationError("phone", "invalid phone number")
	}
	return nil
}
