package catalog

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	shared.Repository[Product]

	// FindByRemoteID returns shared.ErrNotFound if no product carries the remote id
	FindByRemoteID(ctx context.Context, remoteID int64) (*Product, error)

	// FindVariation finds a variation of a product
	FindVariation(ctx context.Context, productID, variationID uuid.UUID) (*Variation, error)

	// ListVariations lists every variation of a product
	ListVariations(ctx context.Context, productID uuid.UUID) ([]Variation, error)

	// UpsertByRemoteID inserts or updates a product keyed by its remote id,
	// replacing its variations
	UpsertByRemoteID(ctx context.Context, product *Product, variations []Variation) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	shared.Repository[Category]

	// FindByRemoteID returns shared.ErrNotFound if no category carries the remote id
	FindByRemoteID(ctx context.Context, remoteID int64) (*Category, error)

	// UpsertByRemoteID inserts or updates a category keyed by its remote id
	UpsertByRemoteID(ctx context.Context, category *Category) error

	// HasChildren checks if a category has any children
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
}

// AttributeRepository defines the interface for attribute persistence
type AttributeRepository interface {
	shared.Repository[Attribute]

	// ListAll returns every attribute, unpaged
	ListAll(ctx context.Context) ([]Attribute, error)

	// MarkSynced stores the remote id and sync time of an attribute
	MarkSynced(ctx context.Context, attribute *Attribute) error
}

// TermRepository defines the interface for attribute term persistence
type TermRepository interface {
	shared.Repository[Term]

	// ListByAttribute returns every term of an attribute, unpaged
	ListByAttribute(ctx context.Context, attributeID uuid.UUID) ([]Term, error)

	// MarkSynced stores the remote id and sync time of a term
	MarkSynced(ctx context.Context, term *Term) error
}

// TagRepository defines the interface for tag persistence
type TagRepository interface {
	shared.Repository[Tag]

	// ListAll returns every tag, unpaged
	ListAll(ctx context.Context) ([]Tag, error)

	// MarkSynced stores the remote id and sync time of a tag
	MarkSynced(ctx context.Context, tag *Tag) error
}
