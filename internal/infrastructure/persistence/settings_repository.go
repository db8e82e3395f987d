package persistence

import (
	"context"

	"github.com/atelier/backend/internal/domain/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	store
}

// NewGormSettingsRepository creates a new GORM settings repository
func NewGormSettingsRepository(db *Database) *GormSettingsRepository {
	return &GormSettingsRepository{store: db.store()}
}

// Get returns the settings row, or shared.ErrNotFound when none was saved
func (r *GormSettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", settings.SingletonID).First(&s).Error
	})
	if err != nil {
		return nil, translateError(err, "settings", nil)
	}
	return &s, nil
}

// Save upserts the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.Settings) error {
	s.ID = settings.SingletonID
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tax_rate", "fiscal_value", "updated_at"}),
		}).Create(s).Error
	})
	return translateError(err, "settings", nil)
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
