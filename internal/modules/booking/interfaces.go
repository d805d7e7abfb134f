package booking

import (
	"context"

	"hotel/internal/domain"
	"hotel/internal/repository"
)

// BookingRepository is the booking store plus a way to run several calls in one transaction.
type BookingRepository interface {
	repository.BookingStore
	Transaction(ctx context.Context, fn func(tx repository.BookingStore) error) error
}

// RoomDirectory resolves rooms and keeps their cached status in sync.
type RoomDirectory interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Room, error)
	SyncStatus(ctx context.Context, ids []int64, status domain.RoomStatus) error
}

type ServiceCatalog interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Service, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier is fire-and-forget. Implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, ev domain.BookingEvent)
}
