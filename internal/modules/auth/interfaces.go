package auth

import (
	"context"

	"hotel/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
	HasBookings(ctx context.Context, id int64) (bool, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
