package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"hotel/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	RoomNumber    string         `gorm:"column:room_number;size:32;uniqueIndex;not null"`
	RoomType      string         `gorm:"column:room_type;size:16"`
	Description   *string        `gorm:"column:description;type:text"`
	PricePerNight float64        `gorm:"column:price_per_night;not null"`
	Status        string         `gorm:"column:status;size:16;index;not null"`
	Amenities     datatypes.JSON `gorm:"column:amenities"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) *domain.Room {
	var description string
	if m.Description != nil {
		description = *m.Description
	}
	amenities := []string{}
	if len(m.Amenities) > 0 {
		_ = json.Unmarshal(m.Amenities, &amenities)
	}

	return &domain.Room{
		ID:            m.ID,
		RoomNumber:    m.RoomNumber,
		RoomType:      domain.RoomType(m.RoomType),
		Description:   description,
		PricePerNight: m.PricePerNight,
		Status:        domain.RoomStatus(m.Status),
		Amenities:     amenities,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	var description *string
	if r.Description != "" {
		v := r.Description
		description = &v
	}
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	raw, _ := json.Marshal(amenities)
	status := string(r.Status)
	if status == "" {
		status = string(domain.RoomAvailable)
	}

	return roomModel{
		ID:            r.ID,
		RoomNumber:    strings.TrimSpace(r.RoomNumber),
		RoomType:      string(r.RoomType),
		Description:   description,
		PricePerNight: r.PricePerNight,
		Status:        status,
		Amenities:     datatypes.JSON(raw),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type RoomFilter struct {
	Status domain.RoomStatus
	Type   domain.RoomType
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	tx := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{
			"room_number":     m.RoomNumber,
			"room_type":       m.RoomType,
			"description":     m.Description,
			"price_per_night": m.PricePerNight,
			"amenities":       m.Amenities,
			"updated_at":      time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&roomModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainRoom(m), nil
}

// FindByIDs returns the rooms that exist among ids, ordered by id.
func (r *RoomRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Room, error) {
	if len(ids) == 0 {
		return []domain.Room{}, nil
	}
	var rows []roomModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

func (r *RoomRepository) List(ctx context.Context, f RoomFilter) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&roomModel{}).Order("room_number")
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Type != "" {
		q = q.Where("room_type = ?", string(f.Type))
	}

	var rows []roomModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

// ListAvailable returns rooms outside maintenance with no blocking booking overlapping [in, out).
func (r *RoomRepository) ListAvailable(ctx context.Context, in, out domain.Date) ([]domain.Room, error) {
	busy := r.db.
		Table("booking_rooms").
		Select("booking_rooms.room_id").
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("bookings.status IN ?", blockingStatuses()).
		Where("bookings.check_in_date < ? AND bookings.check_out_date > ?", out.Time, in.Time)

	var rows []roomModel
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.RoomMaintenance)).
		Where("id NOT IN (?)", busy).
		Order("room_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

func (r *RoomRepository) SetStatus(ctx context.Context, ids []int64, status domain.RoomStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// SyncStatus is the booking-driven status update. Rooms taken out for
// maintenance are left alone; only staff clear that flag.
func (r *RoomRepository) SyncStatus(ctx context.Context, ids []int64, status domain.RoomStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id IN ? AND status <> ?", ids, string(domain.RoomMaintenance)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *RoomRepository) ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&roomModel{}).Where("room_number = ?", strings.TrimSpace(number))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var cnt int64
	err := q.Count(&cnt).Error
	return cnt > 0, err
}

// HasBookings reports whether any booking references the room.
func (r *RoomRepository) HasBookings(ctx context.Context, id int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingRoomModel{}).Where("room_id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}

func toDomainRooms(rows []roomModel) []domain.Room {
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out
}
