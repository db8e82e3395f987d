package partner

import "github.com/atelier/backend/internal/domain/shared"

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	shared.Repository[Client]
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	shared.Repository[Employee]
}
