package partner

import (
	"regexp"
	"strings"

	"github.com/atelier/backend/internal/domain/shared"
)

// ClientType represents the type of client
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Client is a customer quotes and invoices are addressed to
type Client struct {
	shared.BaseEntity
	Name    string     `gorm:"type:varchar(200);not null;index" json:"name"`
	Type    ClientType `gorm:"type:varchar(20);not null;default:'individual'" json:"type"`
	Email   string     `gorm:"type:varchar(200);index" json:"email"`
	Phone   string     `gorm:"type:varchar(50)" json:"phone"`
	Address string     `gorm:"type:text" json:"address"`
	TaxID   string     `gorm:"type:varchar(50)" json:"tax_id"`
	Notes   string     `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(name string, clientType ClientType) (*Client, error) {
	c := &Client{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Type:       clientType,
	}
	if c.Type == "" {
		c.Type = ClientTypeIndividual
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the client fields
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewValidationError("name", "client name is required")
	}
	if len(c.Name) > 200 {
		return shared.NewValidationError("name", "client name cannot exceed 200 characters")
	}
	if c.Type != ClientTypeIndividual && c.Type != ClientTypeCompany {
		return shared.NewValidationError("type", "client type must be individual or company")
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		return shared.NewValidationError("phone", "invalid phone number")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	return nil
}
