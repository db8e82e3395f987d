package catalog

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Attribute is a global product attribute (e.g. Color) pushed to the remote catalog
type Attribute struct {
	shared.BaseEntity
	RemoteID    *int64     `gorm:"uniqueIndex" json:"remote_id,omitempty"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string     `gorm:"type:varchar(100);index" json:"slug"`
	Type        string     `gorm:"type:varchar(20);not null;default:'select'" json:"type"`
	OrderBy     string     `gorm:"type:varchar(20);not null;default:'menu_order'" json:"order_by"`
	HasArchives bool       `gorm:"not null;default:false" json:"has_archives"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// NewAttribute creates a new select attribute
func NewAttribute(name string) (*Attribute, error) {
	if err := validateName("name", name, 100); err != nil {
		return nil, err
	}
	return &Attribute{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Slug:       Slugify(name),
		Type:       "select",
		OrderBy:    "menu_order",
	}, nil
}

// GetRemoteID implements Syncable
func (a *Attribute) GetRemoteID() *int64 { return a.RemoteID }

// NeedsPush reports whether the attribute changed since the last sync
func (a *Attribute) NeedsPush() bool { return needsPush(a.RemoteID, a.UpdatedAt, a.SyncedAt) }

// MarkSynced records the remote id assigned or confirmed by the remote catalog
func (a *Attribute) MarkSynced(remoteID int64, at time.Time) {
	a.RemoteID = &remoteID
	a.SyncedAt = &at
}

// Term is one value of an attribute (e.g. Blue for Color)
type Term struct {
	shared.BaseEntity
	AttributeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"attribute_id"`
	RemoteID    *int64     `gorm:"index" json:"remote_id,omitempty"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string     `gorm:"type:varchar(100);index" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	MenuOrder   int        `gorm:"not null;default:0" json:"menu_order"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// TableName returns the table name for GORM
func (Term) TableName() string {
	return "attribute_terms"
}

// NewTerm creates a new attribute term
func NewTerm(attributeID uuid.UUID, name string) (*Term, error) {
	if attributeID == uuid.Nil {
		return nil, shared.NewValidationError("attribute_id", "attribute is required")
	}
	if err := validateName("name", name, 100); err != nil {
		return nil, err
	}
	return &Term{
		BaseEntity:  shared.NewBaseEntity(),
		AttributeID: attributeID,
		Name:        strings.TrimSpace(name),
		Slug:        Slugify(name),
	}, nil
}

// GetRemoteID implements Syncable
func (t *Term) GetRemoteID() *int64 { return t.RemoteID }

// NeedsPush reports whether the term changed since the last sync
func (t *Term) NeedsPush() bool { return needsPush(t.RemoteID, t.UpdatedAt, t.SyncedAt) }

// MarkSynced records the remote id assigned or confirmed by the remote catalog
func (t *Term) MarkSynced(remoteID int64, at time.Time) {
	t.RemoteID = &remoteID
	t.SyncedAt = &at
}
