package catalog

import (
	"strings"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category is a product category mirrored from the remote catalog
type Category struct {
	shared.BaseEntity
	RemoteID       *int64     `gorm:"uniqueIndex" json:"remote_id,omitempty"`
	Name           string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug           string     `gorm:"type:varchar(100);index" json:"slug"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	RemoteParentID *int64     `json:"remote_parent_id,omitempty"`
	Description    string     `gorm:"type:text" json:"description"`
	Count          int        `gorm:"not null;default:0" json:"count"`
	Image          string     `gorm:"type:varchar(500)" json:"image"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name, description string, parentID *uuid.UUID) (*Category, error) {
	if err := validateName("name", name, 100); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Slug:        Slugify(name),
		ParentID:    parentID,
		Description: description,
	}, nil
}
