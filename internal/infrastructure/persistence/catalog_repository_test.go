package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func int64p(v int64) *int64 { return &v }

func newProduct(name, sku string) *catalog.Product {
	p := &catalog.Product{
		Name:          name,
		Slug:          catalog.Slugify(name),
		SKU:           sku,
		Type:          catalog.ProductTypeSimple,
		Status:        catalog.ProductStatusPublish,
		RegularPrice:  valueobject.NewMoneyFromInt(120),
		SalePrice:     valueobject.NewMoneyFromInt(100),
		ManageStock:   true,
		StockQuantity: 4,
		CategoryIDs:   datatypes.JSONSlice[int64]{3, 9},
	}
	p.ID = uuid.New()
	return p
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t))

	p := newProduct("Table basse", "TB-01")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Table basse", got.Name)
	assert.True(t, got.SalePrice.Equals(valueobject.NewMoneyFromInt(100)))
	assert.Equal(t, []int64{3, 9}, []int64(got.CategoryIDs))
	assert.Nil(t, got.RemoteID)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestProductRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t))

	for _, p := range []*catalog.Product{
		newProduct("Café crème", "CC-1"),
		newProduct("Chaise", "CH-1"),
		newProduct("Fauteuil", "FA-1"),
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	t.Run("paginates with the total count", func(t *testing.T) {
		rows, total, err := repo.GetAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, rows, 1)
		assert.Equal(t, "Fauteuil", rows[0].Name)
	})

	t.Run("search matches sku case-insensitively", func(t *testing.T) {
		rows, total, err := repo.GetAll(ctx, shared.Filter{Search: "ch-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Chaise", rows[0].Name)
	})

	t.Run("search matches the folded slug", func(t *testing.T) {
		rows, _, err := repo.GetAll(ctx, shared.Filter{Search: "café"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "CC-1", rows[0].SKU)
	})

	t.Run("rejects unknown filter fields", func(t *testing.T) {
		_, _, err := repo.GetAll(ctx, shared.Filter{Filters: map[string]any{"description": "x"}})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("unknown sort falls back to default", func(t *testing.T) {
		rows, _, err := repo.GetAll(ctx, shared.Filter{OrderBy: "name; DROP TABLE products"})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t))
	p := newProduct("Lampe", "LA-1")
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.Update(ctx, p.ID, map[string]any{"stock_quantity": int64(9)}))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.StockQuantity)

	err = repo.Update(ctx, p.ID, map[string]any{"id": uuid.New()})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	err = repo.Update(ctx, uuid.New(), map[string]any{"name": "x"})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.Equal(t, shared.KindNotFound, shared.KindOf(repo.Delete(ctx, p.ID)))
}

func TestProductRepository_UpsertByRemoteID(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t))

	pulled := newProduct("Robe", "RB")
	pulled.Type = catalog.ProductTypeVariable
	pulled.RemoteID = int64p(501)
	variations := []catalog.Variation{
		{RemoteID: int64p(601), SKU: "RB-S", Attributes: datatypes.JSONSlice[catalog.VariationAttribute]{{RemoteAttributeID: 1, Name: "Taille", Option: "S"}}},
		{RemoteID: int64p(602), SKU: "RB-M"},
	}
	require.NoError(t, repo.UpsertByRemoteID(ctx, pulled, variations))
	localID := pulled.ID

	again := newProduct("Robe longue", "RB")
	again.RemoteID = int64p(501)
	require.NoError(t, repo.UpsertByRemoteID(ctx, again, []catalog.Variation{{RemoteID: int64p(603), SKU: "RB-L"}}))
	assert.Equal(t, localID, again.ID)

	found, err := repo.FindByRemoteID(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, "Robe longue", found.Name)

	vs, err := repo.ListVariations(ctx, localID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "RB-L", vs[0].SKU)

	v, err := repo.FindVariation(ctx, localID, vs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(603), *v.RemoteID)

	_, err = repo.FindVariation(ctx, uuid.New(), vs[0].ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	assert.Error(t, repo.UpsertByRemoteID(ctx, newProduct("No remote", "NR"), nil))
}

func TestProductRepository_DeleteRemovesVariations(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db)

	p := newProduct("Veste", "VE")
	p.RemoteID = int64p(77)
	require.NoError(t, repo.UpsertByRemoteID(ctx, p, []catalog.Variation{{SKU: "VE-1"}, {SKU: "VE-2"}}))

	require.NoError(t, repo.Delete(ctx, p.ID))

	var count int64
	require.NoError(t, db.DB.Model(&catalog.Variation{}).Where("product_id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProductRepository_DuplicateRemoteID(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t))

	a := newProduct("A", "A")
	a.RemoteID = int64p(1)
	require.NoError(t, repo.Create(ctx, a))

	b := newProduct("B", "B")
	b.RemoteID = int64p(1)
	err := repo.Create(ctx, b)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists), "got %v", err)
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCategoryRepository(newTestDatabase(t))

	parent := &catalog.Category{Name: "Meubles", Slug: "meubles", RemoteID: int64p(10)}
	require.NoError(t, repo.UpsertByRemoteID(ctx, parent))
	require.NotEqual(t, uuid.Nil, parent.ID)

	child := &catalog.Category{Name: "Chaises", Slug: "chaises", RemoteID: int64p(11), ParentID: &parent.ID, RemoteParentID: int64p(10)}
	require.NoError(t, repo.UpsertByRemoteID(ctx, child))

	has, err := repo.HasChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasChildren(ctx, child.ID)
	require.NoError(t, err)
	assert.False(t, has)

	renamed := &catalog.Category{Name: "Mobilier", Slug: "mobilier", RemoteID: int64p(10)}
	require.NoError(t, repo.UpsertByRemoteID(ctx, renamed))
	assert.Equal(t, parent.ID, renamed.ID)

	got, err := repo.FindByRemoteID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Mobilier", got.Name)

	rows, total, err := repo.GetAll(ctx, shared.Filter{Filters: map[string]any{"parent_id": parent.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Chaises", rows[0].Name)
}

func TestAttributeRepository_DeleteRemovesTerms(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	attrs := NewGormAttributeRepository(db)
	terms := NewGormTermRepository(db)

	color := &catalog.Attribute{Name: "Couleur", Slug: "couleur", Type: "select", OrderBy: "menu_order"}
	color.ID = uuid.New()
	require.NoError(t, attrs.Create(ctx, color))
	for i, name := range []string{"Rouge", "Bleu"} {
		term := &catalog.Term{AttributeID: color.ID, Name: name, Slug: catalog.Slugify(name), MenuOrder: i}
		term.ID = uuid.New()
		require.NoError(t, terms.Create(ctx, term))
	}

	listed, err := terms.ListByAttribute(ctx, color.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Rouge", listed[0].Name)

	require.NoError(t, attrs.Delete(ctx, color.ID))
	listed, err = terms.ListByAttribute(ctx, color.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.Equal(t, shared.KindNotFound, shared.KindOf(attrs.Delete(ctx, color.ID)))
}

func TestMarkSynced_KeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	tags := NewGormTagRepository(db)

	edited := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tag := &catalog.Tag{Name: "Soldes", Slug: "soldes"}
	tag.ID = uuid.New()
	tag.CreatedAt = edited
	tag.UpdatedAt = edited
	require.NoError(t, tags.Create(ctx, tag))

	synced := edited.Add(time.Hour)
	tag.RemoteID = int64p(42)
	tag.SyncedAt = &synced
	require.NoError(t, tags.MarkSynced(ctx, tag))

	all, err := tags.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(42), *all[0].RemoteID)
	assert.True(t, all[0].UpdatedAt.Equal(edited))
	require.NotNil(t, all[0].SyncedAt)
	assert.True(t, all[0].SyncedAt.Equal(synced))

	missing := &catalog.Tag{}
	missing.ID = uuid.New()
	assert.Equal(t, shared.KindNotFound, shared.KindOf(tags.MarkSynced(ctx, missing)))
}
