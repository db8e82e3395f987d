package integration

import (
	"context"
	"io"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockResource is a mock implementation of integration.Resource
type MockResource[T any] struct {
	mock.Mock
}

func (m *MockResource[T]) List(ctx context.Context, opts integration.ListOptions) (*integration.Page[T], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Page[T]), args.Error(1)
}

func (m *MockResource[T]) ListAll(ctx context.Context, opts integration.ListOptions) ([]T, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResource[T]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	args := m.Called(ctx, id, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResource[T]) Batch(ctx context.Context, req integration.BatchRequest[T]) (*integration.BatchResponse[T], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.BatchResponse[T]), args.Error(1)
}

// MockGateway is a mock implementation of integration.CatalogGateway.
// Calls records the order in which collections were requested.
type MockGateway struct {
	mock.Mock
	Calls []string
}

func (m *MockGateway) Attributes() integration.Resource[integration.RemoteAttribute] {
	m.Calls = append(m.Calls, "attributes")
	return m.Called().Get(0).(integration.Resource[integration.RemoteAttribute])
}

func (m *MockGateway) Terms(attributeID int64) integration.Resource[integration.RemoteTerm] {
	m.Calls = append(m.Calls, "terms")
	return m.Called(attributeID).Get(0).(integration.Resource[integration.RemoteTerm])
}

func (m *MockGateway) Tags() integration.Resource[integration.RemoteTag] {
	m.Calls = append(m.Calls, "tags")
	return m.Called().Get(0).(integration.Resource[integration.RemoteTag])
}

func (m *MockGateway) Categories() integration.Resource[integration.RemoteCategory] {
	m.Calls = append(m.Calls, "categories")
	return m.Called().Get(0).(integration.Resource[integration.RemoteCategory])
}

func (m *MockGateway) Products() integration.Resource[integration.RemoteProduct] {
	m.Calls = append(m.Calls, "products")
	return m.Called().Get(0).(integration.Resource[integration.RemoteProduct])
}

func (m *MockGateway) Variations(productID int64) integration.Resource[integration.RemoteVariation] {
	m.Calls = append(m.Calls, "variations")
	return m.Called(productID).Get(0).(integration.Resource[integration.RemoteVariation])
}

func (m *MockGateway) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*integration.RemoteMedia, error) {
	args := m.Called(ctx, filename, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteMedia), args.Error(1)
}

// MockRepository is a mock implementation of shared.Repository
type MockRepository[T any] struct {
	mock.Mock
}

func (m *MockRepository[T]) GetAll(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Create(ctx context.Context, entity *T) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockRepository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockRepository[T]) Save(ctx context.Context, entity *T) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository[T]) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockAttributeRepository struct {
	MockRepository[catalog.Attribute]
}

func (m *MockAttributeRepository) ListAll(ctx context.Context) ([]catalog.Attribute, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) MarkSynced(ctx context.Context, attribute *catalog.Attribute) error {
	return m.Called(ctx, attribute).Error(0)
}

type MockTermRepository struct {
	MockRepository[catalog.Term]
}

func (m *MockTermRepository) ListByAttribute(ctx context.Context, attributeID uuid.UUID) ([]catalog.Term, error) {
	args := m.Called(ctx, attributeID)
	return args.Get(0).([]catalog.Term), args.Error(1)
}

func (m *MockTermRepository) MarkSynced(ctx context.Context, term *catalog.Term) error {
	return m.Called(ctx, term).Error(0)
}

type MockTagRepository struct {
	MockRepository[catalog.Tag]
}

func (m *MockTagRepository) ListAll(ctx context.Context) ([]catalog.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Tag), args.Error(1)
}

func (m *MockTagRepository) MarkSynced(ctx context.Context, tag *catalog.Tag) error {
	return m.Called(ctx, tag).Error(0)
}

type MockProductRepository struct {
	MockRepository[catalog.Product]
}

func (m *MockProductRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*catalog.Product, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindVariation(ctx context.Context, productID, variationID uuid.UUID) (*catalog.Variation, error) {
	args := m.Called(ctx, productID, variationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Variation), args.Error(1)
}

func (m *MockProductRepository) ListVariations(ctx context.Context, productID uuid.UUID) ([]catalog.Variation, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.Variation), args.Error(1)
}

func (m *MockProductRepository) UpsertByRemoteID(ctx context.Context, product *catalog.Product, variations []catalog.Variation) error {
	return m.Called(ctx, product, variations).Error(0)
}

type MockCategoryRepository struct {
	MockRepository[catalog.Category]
}

func (m *MockCategoryRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*catalog.Category, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) UpsertByRemoteID(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
