package room

import (
	"context"

	"hotel/internal/domain"
	"hotel/internal/repository"
)

type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	Update(ctx context.Context, r *domain.Room) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, f repository.RoomFilter) ([]domain.Room, error)
	ListAvailable(ctx context.Context, in, out domain.Date) ([]domain.Room, error)
	SetStatus(ctx context.Context, ids []int64, status domain.RoomStatus) error
	ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error)
	HasBookings(ctx context.Context, id int64) (bool, error)
}
