package catalog

import (
	"context"
	"testing"

	"hotel/internal/domain"
	"hotel/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil {
		s.ID = 5
	}
	return args.Error(0)
}

func (m *MockServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	s := *args.Get(0).(*domain.Service)
	return &s, args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *MockServiceRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceRepository) Popular(ctx context.Context, limit int) ([]domain.PopularService, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PopularService), args.Error(1)
}

func TestService_Create(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("ExistsByName", mock.Anything, "Breakfast", int64(0)).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	item, err := NewService(repo).Create(context.Background(), CreateServiceRequest{Name: " Breakfast ", Price: 12.5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.ID)
	assert.Equal(t, "Breakfast", item.Name)
}

func TestService_Create_NameTaken(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("ExistsByName", mock.Anything, "spa", int64(0)).Return(true, nil)

	_, err := NewService(repo).Create(context.Background(), CreateServiceRequest{Name: "spa"})
	assert.ErrorIs(t, err, ErrNameTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_Invalid(t *testing.T) {
	svc := NewService(new(MockServiceRepository))

	_, err := svc.Create(context.Background(), CreateServiceRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), CreateServiceRequest{Name: "Spa", Price: -3})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_Update_ExcludesSelfFromNameCheck(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("GetByID", mock.Anything, int64(2)).Return(&domain.Service{ID: 2, Name: "Spa", Price: 40}, nil)
	repo.On("ExistsByName", mock.Anything, "Spa", int64(2)).Return(false, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Service) bool { return s.Price == 45 })).Return(nil)

	price := 45.0
	_, err := NewService(repo).Update(context.Background(), 2, UpdateServiceRequest{Price: &price})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("Delete", mock.Anything, int64(9)).Return(repository.ErrNotFound)

	assert.ErrorIs(t, NewService(repo).Delete(context.Background(), 9), ErrServiceNotFound)
}

func TestService_Popular(t *testing.T) {
	ranked := []domain.PopularService{
		{Service: domain.Service{ID: 2, Name: "Spa"}, UsageCount: 4},
		{Service: domain.Service{ID: 1, Name: "Breakfast"}, UsageCount: 1},
	}

	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, DefaultPopularLimit},
		{"explicit", 2, 2},
		{"capped", 500, MaxPopularLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockServiceRepository)
			repo.On("Popular", mock.Anything, tc.want).Return(ranked, nil)

			items, err := NewService(repo).Popular(context.Background(), tc.limit)
			require.NoError(t, err)
			assert.Equal(t, ranked, items)
			repo.AssertExpectations(t)
		})
	}

	repo := new(MockServiceRepository)
	repo.On("Popular", mock.Anything, DefaultPopularLimit).Return(nil, assert.AnError)
	_, err := NewService(repo).Popular(context.Background(), 0)
	assert.ErrorIs(t, err, assert.AnError)
}
