package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxPageSize bounds a single page of results
const maxPageSize = 500

// store binds a GORM handle to its dialect and busy retry policy
type store struct {
	db      *gorm.DB
	dialect Dialect
	retry   RetryPolicy
}

func (d *Database) store() store {
	return store{db: d.DB, dialect: d.dialect, retry: d.retry}
}

// txStore binds tx without retry; the enclosing Transaction replays on contention
func (d *Database) txStore(tx *gorm.DB) store {
	return store{db: tx, dialect: d.dialect, retry: NoRetry}
}

// run executes op with the request context, retrying on a busy store
func (s store) run(ctx context.Context, op func(db *gorm.DB) error) error {
	return s.retry.Do(ctx, func() error {
		return op(s.db.WithContext(ctx))
	})
}

// likeOp is the case-insensitive pattern operator of the dialect
func (s store) likeOp() string {
	if s.dialect == DialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// tableSpec describes how a table may be searched, filtered and sorted
type tableSpec struct {
	resource     string
	searchFields []string
	sortFields   map[string]bool
	filterFields map[string]bool
	defaultSort  string
}

// GormRepository implements shared.Repository[T] on top of GORM
type GormRepository[T any] struct {
	store
	spec tableSpec
}

func newGormRepository[T any](s store, spec tableSpec) *GormRepository[T] {
	if spec.defaultSort == "" {
		spec.defaultSort = "created_at"
	}
	if spec.sortFields == nil {
		spec.sortFields = CommonSortFields
	}
	return &GormRepository[T]{store: s, spec: spec}
}

// GetAll returns the page selected by filter and the total matching count
func (r *GormRepository[T]) GetAll(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	var (
		rows  []T
		total int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		base, err := r.scope(db.Model(new(T)), filter)
		if err != nil {
			return err
		}
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}
		query := r.order(base.Session(&gorm.Session{}), filter)
		query = paginate(query, filter)
		return query.Find(&rows).Error
	})
	if err != nil {
		return nil, 0, translateError(err, r.spec.resource, nil)
	}
	return rows, total, nil
}

// GetByID returns shared.ErrNotFound when no row matches
func (r *GormRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&entity).Error
	})
	if err != nil {
		return nil, translateError(err, r.spec.resource, id)
	}
	return &entity, nil
}

// Create inserts a new row
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Create(entity).Error
	})
	return translateError(err, r.spec.resource, nil)
}

// Update applies a partial update of the given columns
func (r *GormRepository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == "id" || k == "created_at" {
			return shared.NewValidationError(k, "%s cannot be updated", k)
		}
		values[k] = v
	}
	if _, ok := values["updated_at"]; !ok {
		values["updated_at"] = time.Now()
	}

	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		res := db.Model(new(T)).Where("id = ?", id).Updates(values)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translateError(err, r.spec.resource, id)
	}
	if affected == 0 {
		return shared.NewNotFoundError(r.spec.resource, id)
	}
	return nil
}

// Save writes every column of an existing entity
func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Save(entity).Error
	})
	return translateError(err, r.spec.resource, nil)
}

// Delete removes a row; shared.ErrNotFound if it does not exist
func (r *GormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("id = ?", id).Delete(new(T))
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translateError(err, r.spec.resource, id)
	}
	if affected == 0 {
		return shared.NewNotFoundError(r.spec.resource, id)
	}
	return nil
}

// DeleteMany returns the number of rows removed
func (r *GormRepository[T]) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("id IN ?", ids).Delete(new(T))
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, translateError(err, r.spec.resource, nil)
	}
	return affected, nil
}

// scope applies search and equality filters
func (r *GormRepository[T]) scope(query *gorm.DB, filter shared.Filter) (*gorm.DB, error) {
	for field, value := range filter.Filters {
		if !r.spec.filterFields[field] {
			return nil, shared.NewValidationError(field, "cannot filter %s by %s", r.spec.resource, field)
		}
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}
	return r.search(query, filter.Search), nil
}

// search matches term against every search field of the table. The folded
// form of the term is matched too, so accents in the query are optional.
func (r *GormRepository[T]) search(query *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(r.spec.searchFields) == 0 {
		return query
	}

	patterns := []string{"%" + term + "%"}
	if folded := catalog.Fold(term); folded != strings.ToLower(term) {
		patterns = append(patterns, "%"+folded+"%")
	}

	clauses := make([]string, 0, len(r.spec.searchFields)*len(patterns))
	args := make([]any, 0, cap(clauses))
	for _, field := range r.spec.searchFields {
		for _, p := range patterns {
			clauses = append(clauses, fmt.Sprintf("%s %s ?", field, r.likeOp()))
			args = append(args, p)
		}
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// order applies a whitelisted sort
func (r *GormRepository[T]) order(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, r.spec.sortFields, r.spec.defaultSort)
	return query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir)))
}

func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	size := filter.PageSize
	if size > maxPageSize {
		size = maxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * size).Limit(size)
}

// translateError maps GORM errors to domain errors. Store busy errors
// produced by the retry policy pass through unchanged.
func translateError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if shared.KindOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if id == nil {
			return shared.ErrNotFound
		}
		return shared.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists.WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewConflictError("%s is referenced by another record", resource).WithCause(err)
	}
	return fmt.Errorf("%s store: %w", resource, err)
}
