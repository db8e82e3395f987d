package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the generic record store contract every entity table satisfies
type Repository[T any] interface {
	// GetAll returns the page selected by filter and the total matching count
	GetAll(ctx context.Context, filter Filter) ([]T, int64, error)

	// GetByID returns ErrNotFound when no row matches
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	Create(ctx context.Context, entity *T) error

	// Update applies a partial update of the given columns
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// Save writes every column of an existing entity
	Save(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany returns the number of rows removed
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Where returns a copy of f with an equality filter added
func (f Filter) Where(field string, value any) Filter {
	filters := make(map[string]any, len(f.Filters)+1)
	for k, v := range f.Filters {
		filters[k] = v
	}
	filters[field] = value
	f.Filters = filters
	return f
}
