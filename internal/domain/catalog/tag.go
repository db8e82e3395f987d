package catalog

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
)

// Tag is a product tag pushed to the remote catalog
type Tag struct {
	shared.BaseEntity
	RemoteID    *int64     `gorm:"uniqueIndex" json:"remote_id,omitempty"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string     `gorm:"type:varchar(100);index" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	Count       int        `gorm:"not null;default:0" json:"count"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// TableName returns the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// NewTag creates a new tag
func NewTag(name, description string) (*Tag, error) {
	if err := validateName("name", name, 100); err != nil {
		return nil, err
	}
	return &Tag{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Slug:        Slugify(name),
		Description: description,
	}, nil
}

// GetRemoteID implements Syncable
func (t *Tag) GetRemoteID() *int64 { return t.RemoteID }

// NeedsPush reports whether the tag changed since the last sync
func (t *Tag) NeedsPush() bool { return needsPush(t.RemoteID, t.UpdatedAt, t.SyncedAt) }

// MarkSynced records the remote id assigned or confirmed by the remote catalog
func (t *Tag) MarkSynced(remoteID int64, at time.Time) {
	t.RemoteID = &remoteID
	t.SyncedAt = &at
}
