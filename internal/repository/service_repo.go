package repository

import (
	"context"
	"strings"
	"time"

	"hotel/internal/domain"

	"gorm.io/gorm"
)

// ServiceRepository stores the catalog of extra services.
type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;size:128;not null"`
	Price       float64   `gorm:"column:price;not null"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) *domain.Service {
	var description string
	if m.Description != nil {
		description = *m.Description
	}
	return &domain.Service{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Description: description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	var description *string
	if s.Description != "" {
		v := s.Description
		description = &v
	}
	return serviceModel{
		ID:          s.ID,
		Name:        strings.TrimSpace(s.Name),
		Price:       s.Price,
		Description: description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*s = *toDomainService(m)
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	tx := r.db.WithContext(ctx).
		Model(&serviceModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":        m.Name,
			"price":       m.Price,
			"description": m.Description,
			"updated_at":  time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&serviceModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainService(m), nil
}

func (r *ServiceRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}
	var rows []serviceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainServices(rows), nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	var rows []serviceModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainServices(rows), nil
}

// ExistsByName is a case-insensitive name check.
func (r *ServiceRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&serviceModel{}).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var cnt int64
	err := q.Count(&cnt).Error
	return cnt > 0, err
}

type popularServiceRow struct {
	serviceModel
	UsageCount int64 `gorm:"column:usage_count"`
}

// Popular ranks services by how many bookings include them. Unused services
// rank last with a zero count.
func (r *ServiceRepository) Popular(ctx context.Context, limit int) ([]domain.PopularService, error) {
	var rows []popularServiceRow
	err := r.db.WithContext(ctx).
		Table("services").
		Select("services.*, COUNT(booking_services.booking_id) AS usage_count").
		Joins("LEFT JOIN booking_services ON booking_services.service_id = services.id").
		Group("services.id").
		Order("usage_count DESC, services.name").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.PopularService, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PopularService{
			Service:    *toDomainService(row.serviceModel),
			UsageCount: row.UsageCount,
		})
	}
	return out, nil
}

func toDomainServices(rows []serviceModel) []domain.Service {
	out := make([]domain.Service, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainService(m))
	}
	return out
}
