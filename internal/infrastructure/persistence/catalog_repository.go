package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	*GormRepository[catalog.Product]
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *Database) *GormProductRepository {
	return &GormProductRepository{newGormRepository[catalog.Product](db.store(), tableSpec{
		resource:     "product",
		searchFields: []string{"name", "sku", "slug"},
		sortFields:   ProductSortFields,
		filterFields: ProductFilterFields,
	})}
}

// FindByRemoteID returns shared.ErrNotFound if no product carries the remote id
func (r *GormProductRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*catalog.Product, error) {
	var p catalog.Product
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("remote_id = ?", remoteID).First(&p).Error
	})
	if err != nil {
		return nil, translateError(err, "product", remoteID)
	}
	return &p, nil
}

// FindVariation finds a variation of a product
func (r *GormProductRepository) FindVariation(ctx context.Context, productID, variationID uuid.UUID) (*catalog.Variation, error) {
	var v catalog.Variation
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ? AND product_id = ?", variationID, productID).First(&v).Error
	})
	if err != nil {
		return nil, translateError(err, "variation", variationID)
	}
	return &v, nil
}

// ListVariations lists every variation of a product
func (r *GormProductRepository) ListVariations(ctx context.Context, productID uuid.UUID) ([]catalog.Variation, error) {
	var variations []catalog.Variation
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("product_id = ?", productID).Order("created_at ASC").Find(&variations).Error
	})
	if err != nil {
		return nil, translateError(err, "variation", nil)
	}
	return variations, nil
}

// UpsertByRemoteID inserts or updates a product keyed by its remote id and
// replaces its variations. The local id of an existing product is kept.
func (r *GormProductRepository) UpsertByRemoteID(ctx context.Context, product *catalog.Product, variations []catalog.Variation) error {
	if product.RemoteID == nil {
		return errors.New("product has no remote id")
	}
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var existing catalog.Product
			err := tx.Where("remote_id = ?", *product.RemoteID).First(&existing).Error
			switch {
			case err == nil:
				product.ID = existing.ID
				product.CreatedAt = existing.CreatedAt
			case errors.Is(err, gorm.ErrRecordNotFound):
				if product.ID == uuid.Nil {
					product.ID = uuid.New()
				}
			default:
				return err
			}

			if err := tx.Save(product).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&catalog.Variation{}).Error; err != nil {
				return err
			}
			if len(variations) == 0 {
				return nil
			}
			for i := range variations {
				variations[i].ProductID = product.ID
				if variations[i].ID == uuid.Nil {
					variations[i].ID = uuid.New()
				}
			}
			return tx.Create(&variations).Error
		})
	})
	return translateError(err, "product", *product.RemoteID)
}

// Delete removes a product and its variations
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", id).Delete(&catalog.Variation{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", id).Delete(&catalog.Product{})
			affected = res.RowsAffected
			return res.Error
		})
	})
	if err != nil {
		return translateError(err, "product", id)
	}
	if affected == 0 {
		return translateError(gorm.ErrRecordNotFound, "product", id)
	}
	return nil
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	*GormRepository[catalog.Category]
}

// NewGormCategoryRepository creates a new GORM category repository
func NewGormCategoryRepository(db *Database) *GormCategoryRepository {
	return &GormCategoryRepository{newGormRepository[catalog.Category](db.store(), tableSpec{
		resource:     "category",
		searchFields: []string{"name", "slug"},
		sortFields:   CategorySortFields,
		filterFields: CategoryFilterFields,
		defaultSort:  "name",
	})}
}

// FindByRemoteID returns shared.ErrNotFound if no category carries the remote id
func (r *GormCategoryRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*catalog.Category, error) {
	var c catalog.Category
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("remote_id = ?", remoteID).First(&c).Error
	})
	if err != nil {
		return nil, translateError(err, "category", remoteID)
	}
	return &c, nil
}

// UpsertByRemoteID inserts or updates a category keyed by its remote id
func (r *GormCategoryRepository) UpsertByRemoteID(ctx context.Context, category *catalog.Category) error {
	if category.RemoteID == nil {
		return errors.New("category has no remote id")
	}
	err := r.run(ctx, func(db *gorm.DB) error {
		var existing catalog.Category
		err := db.Where("remote_id = ?", *category.RemoteID).First(&existing).Error
		switch {
		case err == nil:
			category.ID = existing.ID
			category.CreatedAt = existing.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			if category.ID == uuid.Nil {
				category.ID = uuid.New()
			}
		default:
			return err
		}
		return db.Save(category).Error
	})
	return translateError(err, "category", *category.RemoteID)
}

// HasChildren checks if a category has any children
func (r *GormCategoryRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&catalog.Category{}).Where("parent_id = ?", id).Count(&count).Error
	})
	if err != nil {
		return false, translateError(err, "category", id)
	}
	return count > 0, nil
}

// GormAttributeRepository implements catalog.AttributeRepository using GORM
type GormAttributeRepository struct {
	*GormRepository[catalog.Attribute]
}

// NewGormAttributeRepository creates a new GORM attribute repository
func NewGormAttributeRepository(db *Database) *GormAttributeRepository {
	return &GormAttributeRepository{newGormRepository[catalog.Attribute](db.store(), tableSpec{
		resource:     "attribute",
		searchFields: []string{"name", "slug"},
		sortFields:   AttributeSortFields,
		filterFields: AttributeFilterFields,
		defaultSort:  "name",
	})}
}

// ListAll returns every attribute, unpaged
func (r *GormAttributeRepository) ListAll(ctx context.Context) ([]catalog.Attribute, error) {
	var attrs []catalog.Attribute
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("created_at ASC").Find(&attrs).Error
	})
	return attrs, translateError(err, "attribute", nil)
}

// MarkSynced stores the remote id and sync time of an attribute
func (r *GormAttributeRepository) MarkSynced(ctx context.Context, attribute *catalog.Attribute) error {
	return markSynced(ctx, r.store, &catalog.Attribute{}, "attribute", attribute.ID, attribute.RemoteID, attribute.SyncedAt)
}

// Delete removes an attribute and its terms
func (r *GormAttributeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("attribute_id = ?", id).Delete(&catalog.Term{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", id).Delete(&catalog.Attribute{})
			affected = res.RowsAffected
			return res.Error
		})
	})
	if err != nil {
		return translateError(err, "attribute", id)
	}
	if affected == 0 {
		return translateError(gorm.ErrRecordNotFound, "attribute", id)
	}
	return nil
}

// GormTermRepository implements catalog.TermRepository using GORM
type GormTermRepository struct {
	*GormRepository[catalog.Term]
}

// NewGormTermRepository creates a new GORM attribute term repository
func NewGormTermRepository(db *Database) *GormTermRepository {
	return &GormTermRepository{newGormRepository[catalog.Term](db.store(), tableSpec{
		resource:     "term",
		searchFields: []string{"name", "slug"},
		sortFields:   TermSortFields,
		filterFields: TermFilterFields,
		defaultSort:  "menu_order",
	})}
}

// ListByAttribute returns every term of an attribute, unpaged
func (r *GormTermRepository) ListByAttribute(ctx context.Context, attributeID uuid.UUID) ([]catalog.Term, error) {
	var terms []catalog.Term
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("attribute_id = ?", attributeID).Order("menu_order ASC, created_at ASC").Find(&terms).Error
	})
	return terms, translateError(err, "term", nil)
}

// MarkSynced stores the remote id and sync time of a term
func (r *GormTermRepository) MarkSynced(ctx context.Context, term *catalog.Term) error {
	return markSynced(ctx, r.store, &catalog.Term{}, "term", term.ID, term.RemoteID, term.SyncedAt)
}

// GormTagRepository implements catalog.TagRepository using GORM
type GormTagRepository struct {
	*GormRepository[catalog.Tag]
}

// NewGormTagRepository creates a new GORM tag repository
func NewGormTagRepository(db *Database) *GormTagRepository {
	return &GormTagRepository{newGormRepository[catalog.Tag](db.store(), tableSpec{
		resource:     "tag",
		searchFields: []string{"name", "slug"},
		sortFields:   TagSortFields,
		filterFields: TagFilterFields,
		defaultSort:  "name",
	})}
}

// ListAll returns every tag, unpaged
func (r *GormTagRepository) ListAll(ctx context.Context) ([]catalog.Tag, error) {
	var tags []catalog.Tag
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("created_at ASC").Find(&tags).Error
	})
	return tags, translateError(err, "tag", nil)
}

// MarkSynced stores the remote id and sync time of a tag
func (r *GormTagRepository) MarkSynced(ctx context.Context, tag *catalog.Tag) error {
	return markSynced(ctx, r.store, &catalog.Tag{}, "tag", tag.ID, tag.RemoteID, tag.SyncedAt)
}

// markSynced writes only the sync columns, leaving updated_at untouched so
// later local edits are still detected.
func markSynced(ctx context.Context, s store, model any, resource string, id uuid.UUID, remoteID *int64, syncedAt *time.Time) error {
	if syncedAt == nil {
		now := time.Now()
		syncedAt = &now
	}
	var affected int64
	err := s.run(ctx, func(db *gorm.DB) error {
		res := db.Model(model).Where("id = ?", id).UpdateColumns(map[string]any{
			"remote_id": remoteID,
			"synced_at": *syncedAt,
		})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translateError(err, resource, id)
	}
	if affected == 0 {
		return translateError(gorm.ErrRecordNotFound, resource, id)
	}
	return nil
}

var (
	_ catalog.ProductRepository   = (*GormProductRepository)(nil)
	_ catalog.CategoryRepository  = (*GormCategoryRepository)(nil)
	_ catalog.AttributeRepository = (*GormAttributeRepository)(nil)
	_ catalog.TermRepository      = (*GormTermRepository)(nil)
	_ catalog.TagRepository       = (*GormTagRepository)(nil)
)
