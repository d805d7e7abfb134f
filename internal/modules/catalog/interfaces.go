package catalog

import (
	"context"

	"hotel/internal/domain"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Popular(ctx context.Context, limit int) ([]domain.PopularService, error)
}
