package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel/internal/domain"
	"hotel/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, r *domain.Room) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = 11
	}
	return args.Error(0)
}

func (m *MockRoomRepository) Update(ctx context.Context, r *domain.Room) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	r := *args.Get(0).(*domain.Room)
	return &r, args.Error(1)
}

func (m *MockRoomRepository) List(ctx context.Context, f repository.RoomFilter) ([]domain.Room, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomRepository) ListAvailable(ctx context.Context, in, out domain.Date) ([]domain.Room, error) {
	args := m.Called(ctx, in, out)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomRepository) SetStatus(ctx context.Context, ids []int64, status domain.RoomStatus) error {
	return m.Called(ctx, ids, status).Error(0)
}

func (m *MockRoomRepository) ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error) {
	args := m.Called(ctx, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomRepository) HasBookings(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func newService() (*Service, *MockRoomRepository) {
	repo := new(MockRoomRepository)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, log), repo
}

func TestService_Create(t *testing.T) {
	svc, repo := newService()
	repo.On("ExistsByNumber", mock.Anything, "101", int64(0)).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := svc.Create(context.Background(), CreateRoomRequest{
		RoomNumber:    " 101 ",
		RoomType:      "Double",
		PricePerNight: 3000,
		Amenities:     []string{"WiFi", "wifi", " ", "TV"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), r.ID)
	assert.Equal(t, "101", r.RoomNumber)
	assert.Equal(t, domain.RoomAvailable, r.Status)
	assert.Equal(t, []string{"WiFi", "TV"}, r.Amenities)
}

func TestService_Create_DuplicateNumber(t *testing.T) {
	svc, repo := newService()
	repo.On("ExistsByNumber", mock.Anything, "101", int64(0)).Return(true, nil)

	_, err := svc.Create(context.Background(), CreateRoomRequest{RoomNumber: "101", RoomType: "Single"})
	assert.ErrorIs(t, err, ErrNumberTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_Invalid(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), CreateRoomRequest{RoomNumber: "1", RoomType: "Suite"})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Create(context.Background(), CreateRoomRequest{RoomNumber: "1", RoomType: "Single", PricePerNight: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_Update_Partial(t *testing.T) {
	svc, repo := newService()
	existing := &domain.Room{ID: 3, RoomNumber: "201", RoomType: domain.RoomSingle, PricePerNight: 100, Status: domain.RoomBooked}
	repo.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)
	repo.On("ExistsByNumber", mock.Anything, "201", int64(3)).Return(false, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Room) bool {
		return r.PricePerNight == 150 && r.RoomType == domain.RoomSingle && r.Status == domain.RoomBooked
	})).Return(nil)

	price := 150.0
	_, err := svc.Update(context.Background(), 3, UpdateRoomRequest{PricePerNight: &price})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_SetStatus(t *testing.T) {
	svc, repo := newService()
	repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Room{ID: 3, Status: domain.RoomAvailable}, nil)
	repo.On("SetStatus", mock.Anything, []int64{3}, domain.RoomMaintenance).Return(nil)

	r, err := svc.SetStatus(context.Background(), 3, domain.RoomMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomMaintenance, r.Status)

	_, err = svc.SetStatus(context.Background(), 3, "closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_Delete(t *testing.T) {
	svc, repo := newService()
	repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Room{ID: 3}, nil)
	repo.On("HasBookings", mock.Anything, int64(3)).Return(true, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), 3), ErrRoomHasBookings)

	repo.On("GetByID", mock.Anything, int64(4)).Return(nil, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 4), ErrRoomNotFound)
}

func TestService_Available(t *testing.T) {
	svc, repo := newService()
	in := domain.NewDate(2025, time.March, 1)
	out := domain.NewDate(2025, time.March, 3)
	repo.On("ListAvailable", mock.Anything, in, out).Return([]domain.Room{{ID: 1}}, nil)

	rooms, err := svc.Available(context.Background(), in, out)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	_, err = svc.Available(context.Background(), out, in)
	assert.ErrorIs(t, err, ErrDateRange)
}

func TestService_List_StorageError(t *testing.T) {
	svc, repo := newService()
	repo.On("List", mock.Anything, repository.RoomFilter{}).Return([]domain.Room(nil), errors.New("db down"))

	_, err := svc.List(context.Background(), "", "")
	assert.Error(t, err)

	_, err = svc.List(context.Background(), "", "Penthouse")
	assert.ErrorIs(t, err, ErrInvalidType)
}
