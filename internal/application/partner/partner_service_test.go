package partner

import (
	"context"
	"testing"

	"github.com/atelier/backend/internal/domain/partner"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func strPtr(s string) *string { return &s }

func TestClientService_Create(t *testing.T) {
	tests := []struct {
		name     string
		req      CreateClientRequest
		wantType partner.ClientType
		wantKind shared.ErrorKind
	}{
		{
			name:     "company with tax id",
			req:      CreateClientRequest{Name: "Atelier Nour", Type: "company", TaxID: " 1234567A ", Email: "contact@nour.tn"},
			wantType: partner.ClientTypeCompany,
		},
		{
			name:     "type defaults to individual",
			req:      CreateClientRequest{Name: "Sami Ben Ali"},
			wantType: partner.ClientTypeIndividual,
		},
		{
			name:     "invalid email",
			req:      CreateClientRequest{Name: "Sami", Email: "not-an-email"},
			wantKind: shared.KindValidation,
		},
		{
			name:     "blank name",
			req:      CreateClientRequest{Name: "   "},
			wantKind: shared.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository[partner.Client])
			svc := NewClientService(repo)
			repo.On("Create", mock.Anything, mock.AnythingOfType("*partner.Client")).Return(nil)

			resp, err := svc.Create(context.Background(), tt.req)

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, shared.KindOf(err))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, resp.Type)
			repo.AssertExpectations(t)
		})
	}
}

func TestClientService_Update(t *testing.T) {
	repo := new(MockRepository[partner.Client])
	svc := NewClientService(repo)
	ctx := context.Background()

	client, err := partner.NewClient("Atelier Nour", partner.ClientTypeCompany)
	require.NoError(t, err)
	repo.On("GetByID", ctx, client.ID).Return(client, nil)
	repo.On("Save", ctx, client).Return(nil)

	resp, err := svc.Update(ctx, UpdateClientRequest{ID: client.ID, Phone: strPtr("+216 71 000 000")})

	require.NoError(t, err)
	assert.Equal(t, "+216 71 000 000", resp.Phone)
	assert.Equal(t, "Atelier Nour", resp.Name)
}

func TestClientService_Update_InvalidType(t *testing.T) {
	repo := new(MockRepository[partner.Client])
	svc := NewClientService(repo)
	ctx := context.Background()

	client, err := partner.NewClient("Atelier Nour", partner.ClientTypeCompany)
	require.NoError(t, err)
	repo.On("GetByID", ctx, client.ID).Return(client, nil)

	_, err = svc.Update(ctx, UpdateClientRequest{ID: client.ID, Type: strPtr("reseller")})

	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_GetByID_NotFound(t *testing.T) {
	repo := new(MockRepository[partner.Client])
	svc := NewClientService(repo)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("client", id))

	_, err := svc.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientService_DeleteMany(t *testing.T) {
	repo := new(MockRepository[partner.Client])
	svc := NewClientService(repo)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// one id no longer exists
	repo.On("DeleteMany", mock.Anything, ids).Return(int64(2), nil)

	n, err := svc.DeleteMany(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.DeleteMany(context.Background(), []uuid.UUID{})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestClientService_List(t *testing.T) {
	repo := new(MockRepository[partner.Client])
	svc := NewClientService(repo)
	client, _ := partner.NewClient("Atelier Nour", partner.ClientTypeCompany)

	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "name" && f.Search == "nour" && f.Filters["type"] == "company"
	})).Return([]partner.Client{*client}, int64(1), nil)

	rows, total, err := svc.List(context.Background(), ListFilter{Search: "nour", Filters: map[string]any{"type": "company"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, client.ID, rows[0].ID)
}

func TestEmployeeService_CreateAndDeactivate(t *testing.T) {
	repo := new(MockRepository[partner.Employee])
	svc := NewEmployeeService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*partner.Employee")).Return(nil)

	created, err := svc.Create(ctx, CreateEmployeeRequest{FirstName: "Leila", LastName: "Trabelsi", Role: "Potière"})
	require.NoError(t, err)
	assert.Equal(t, "Leila Trabelsi", created.FullName)
	assert.True(t, created.Active)

	employee, _ := partner.NewEmployee("Leila", "Trabelsi")
	inactive := false
	repo.On("GetByID", ctx, employee.ID).Return(employee, nil)
	repo.On("Save", ctx, employee).Return(nil)

	updated, err := svc.Update(ctx, UpdateEmployeeRequest{ID: employee.ID, Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestEmployeeService_Create_MissingLastName(t *testing.T) {
	repo := new(MockRepository[partner.Employee])
	svc := NewEmployeeService(repo)

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{FirstName: "Leila"})

	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
