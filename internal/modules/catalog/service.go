package catalog

import (
	"context"
	"errors"
	"strings"

	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/pkg/apperror"
	"hotel/internal/repository"
)

// Service manages the catalog of extras a booking can carry.
type Service struct {
	repo ServiceRepository
}

func NewService(repo ServiceRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateServiceRequest) (*domain.Service, error) {
	item := &domain.Service{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, apperror.Infrastructure(err)
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, apperror.Infrastructure(err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrServiceNotFound
		}
		return apperror.Infrastructure(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Service, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, apperror.Infrastructure(err)
	}
	return item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Service, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return items, nil
}

const (
	DefaultPopularLimit = 5
	MaxPopularLimit     = 50
)

// Popular returns the services booked most often. A non-positive limit means
// DefaultPopularLimit.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.PopularService, error) {
	switch {
	case limit <= 0:
		limit = DefaultPopularLimit
	case limit > MaxPopularLimit:
		limit = MaxPopularLimit
	}
	items, err := s.repo.Popular(ctx, limit)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return items, nil
}

func (s *Service) check(ctx context.Context, item *domain.Service) error {
	if item.Name == "" {
		return ErrNameRequired
	}
	if item.Price < 0 {
		return ErrInvalidPrice
	}
	taken, err := s.repo.ExistsByName(ctx, item.Name, item.ID)
	if err != nil {
		return apperror.Infrastructure(err)
	}
	if taken {
		return ErrNameTaken
	}
	return nil
}
