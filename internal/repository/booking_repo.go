package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"hotel/internal/database"
	"hotel/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingStore is the storage surface the booking lifecycle works against.
// Inside Transaction every call shares one database transaction.
type BookingStore interface {
	LockRooms(ctx context.Context, ids []int64) ([]domain.Room, error)
	HasConflict(ctx context.Context, roomIDs []int64, in, out domain.Date, excludeID int64) (bool, error)
	FindOverlapping(ctx context.Context, roomIDs []int64, in, out domain.Date, excludeID int64) ([]domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking) error
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f BookingFilter) ([]domain.Booking, error)
}

type BookingFilter struct {
	GuestID int64
	RoomID  int64
	Status  domain.BookingStatus
}

type BookingRepository struct {
	db   *gorm.DB
	inTx bool // set on stores handed out by Transaction
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

var _ BookingStore = (*BookingRepository)(nil)

type bookingModel struct {
	ID           int64                 `gorm:"column:id;primaryKey"`
	GuestID      int64                 `gorm:"column:guest_id;index;not null"`
	CreatedBy    int64                 `gorm:"column:created_by;not null"`
	CheckInDate  time.Time             `gorm:"column:check_in_date;index;not null"`
	CheckOutDate time.Time             `gorm:"column:check_out_date;index;not null"`
	TotalPrice   float64               `gorm:"column:total_price;not null"`
	Status       string                `gorm:"column:status;size:16;index;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at"`
	UpdatedAt    time.Time             `gorm:"column:updated_at"`
	Rooms        []bookingRoomModel    `gorm:"foreignKey:BookingID"`
	Services     []bookingServiceModel `gorm:"foreignKey:BookingID"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingRoomModel struct {
	BookingID int64 `gorm:"column:booking_id;primaryKey"`
	RoomID    int64 `gorm:"column:room_id;primaryKey;index"`
}

func (bookingRoomModel) TableName() string { return "booking_rooms" }

type bookingServiceModel struct {
	BookingID int64 `gorm:"column:booking_id;primaryKey"`
	ServiceID int64 `gorm:"column:service_id;primaryKey"`
}

func (bookingServiceModel) TableName() string { return "booking_services" }

// roomNightModel is one claimed night of one room. The unique index is what
// serializes concurrent creates for the same room and dates.
type roomNightModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	RoomID    int64     `gorm:"column:room_id;not null;uniqueIndex:idx_room_night"`
	Night     time.Time `gorm:"column:night;not null;uniqueIndex:idx_room_night"`
	BookingID int64     `gorm:"column:booking_id;not null;index"`
}

func (roomNightModel) TableName() string { return "room_nights" }

func blockingStatuses() []string {
	out := make([]string, 0, len(domain.BlockingStatuses))
	for _, s := range domain.BlockingStatuses {
		out = append(out, string(s))
	}
	return out
}

func toDomainBooking(m bookingModel) *domain.Booking {
	rooms := make([]int64, 0, len(m.Rooms))
	for _, r := range m.Rooms {
		rooms = append(rooms, r.RoomID)
	}
	services := make([]int64, 0, len(m.Services))
	for _, s := range m.Services {
		services = append(services, s.ServiceID)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })

	return &domain.Booking{
		ID:              m.ID,
		RoomIDs:         rooms,
		GuestID:         m.GuestID,
		CreatedBy:       m.CreatedBy,
		CheckInDate:     domain.DateOf(m.CheckInDate),
		CheckOutDate:    domain.DateOf(m.CheckOutDate),
		TotalPrice:      m.TotalPrice,
		Status:          domain.BookingStatus(m.Status),
		ExtraServiceIDs: services,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:           b.ID,
		GuestID:      b.GuestID,
		CreatedBy:    b.CreatedBy,
		CheckInDate:  b.CheckInDate.Time,
		CheckOutDate: b.CheckOutDate.Time,
		TotalPrice:   b.TotalPrice,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// Transaction runs fn with a store bound to a single transaction.
func (r *BookingRepository) Transaction(ctx context.Context, fn func(tx BookingStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepository{db: tx, inTx: true})
	})
}

// atomic runs fn in a transaction, joining the current one if there is one.
func (r *BookingRepository) atomic(ctx context.Context, fn func(tx *BookingRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepository{db: tx, inTx: true})
	})
}

// LockRooms loads the rooms and takes row locks where the dialect supports them.
func (r *BookingRepository) LockRooms(ctx context.Context, ids []int64) ([]domain.Room, error) {
	if len(ids) == 0 {
		return []domain.Room{}, nil
	}
	var rows []roomModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

func (r *BookingRepository) overlapQuery(ctx context.Context, roomIDs []int64, in, out domain.Date, excludeID int64) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("status IN ?", blockingStatuses()).
		Where("check_in_date < ? AND check_out_date > ?", out.Time, in.Time).
		Where("id IN (?)", r.db.Model(&bookingRoomModel{}).Select("booking_id").Where("room_id IN ?", roomIDs))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

// HasConflict reports whether a blocking booking other than excludeID holds
// any of roomIDs for a night in [in, out).
func (r *BookingRepository) HasConflict(ctx context.Context, roomIDs []int64, in, out domain.Date, excludeID int64) (bool, error) {
	if len(roomIDs) == 0 || !in.Before(out.Time) {
		return false, nil
	}
	var cnt int64
	if err := r.overlapQuery(ctx, roomIDs, in, out, excludeID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, roomIDs []int64, in, out domain.Date, excludeID int64) ([]domain.Booking, error) {
	if len(roomIDs) == 0 || !in.Before(out.Time) {
		return []domain.Booking{}, nil
	}
	var rows []bookingModel
	err := r.overlapQuery(ctx, roomIDs, in, out, excludeID).
		Preload("Rooms").
		Preload("Services").
		Order("check_in_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	err := r.atomic(ctx, func(tx *BookingRepository) error {
		if err := tx.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
			return err
		}
		if err := tx.writeLinks(ctx, m.ID, b.RoomIDs, b.ExtraServiceIDs); err != nil {
			return err
		}
		if b.Status.IsBlocking() {
			return tx.claimNights(ctx, m.ID, b.RoomIDs, b.CheckInDate, b.CheckOutDate)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// Update rewrites rooms, dates, price and services. Claimed nights are
// released and reclaimed for the new range.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	err := r.atomic(ctx, func(tx *BookingRepository) error {
		db := tx.db.WithContext(ctx)
		res := db.Model(&bookingModel{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{
				"check_in_date":  b.CheckInDate.Time,
				"check_out_date": b.CheckOutDate.Time,
				"total_price":    b.TotalPrice,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := db.Where("booking_id = ?", b.ID).Delete(&bookingRoomModel{}).Error; err != nil {
			return err
		}
		if err := db.Where("booking_id = ?", b.ID).Delete(&bookingServiceModel{}).Error; err != nil {
			return err
		}
		if err := tx.writeLinks(ctx, b.ID, b.RoomIDs, b.ExtraServiceIDs); err != nil {
			return err
		}
		if err := tx.releaseNights(ctx, b.ID); err != nil {
			return err
		}
		if b.Status.IsBlocking() {
			return tx.claimNights(ctx, b.ID, b.RoomIDs, b.CheckInDate, b.CheckOutDate)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

// UpdateStatus moves a booking from one status to another only if it is still
// in from. Leaving the blocking set releases the claimed nights in the same
// transaction.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	return r.atomic(ctx, func(tx *BookingRepository) error {
		db := tx.db.WithContext(ctx)
		res := db.Model(&bookingModel{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(map[string]any{
				"status":     string(to),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var cnt int64
			if err := db.Model(&bookingModel{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
				return err
			}
			if cnt == 0 {
				return ErrNotFound
			}
			return ErrStatusChanged
		}

		if !to.IsBlocking() {
			return tx.releaseNights(ctx, id)
		}
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).
		Preload("Rooms").
		Preload("Services").
		First(&m, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.atomic(ctx, func(tx *BookingRepository) error {
		db := tx.db.WithContext(ctx)
		if err := tx.releaseNights(ctx, id); err != nil {
			return err
		}
		if err := db.Where("booking_id = ?", id).Delete(&bookingRoomModel{}).Error; err != nil {
			return err
		}
		if err := db.Where("booking_id = ?", id).Delete(&bookingServiceModel{}).Error; err != nil {
			return err
		}
		res := db.Delete(&bookingModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Preload("Rooms").
		Preload("Services").
		Order("check_in_date, id")
	if f.GuestID > 0 {
		q = q.Where("guest_id = ?", f.GuestID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.RoomID > 0 {
		q = q.Where("id IN (?)", r.db.Model(&bookingRoomModel{}).Select("booking_id").Where("room_id = ?", f.RoomID))
	}

	var rows []bookingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) writeLinks(ctx context.Context, bookingID int64, roomIDs, serviceIDs []int64) error {
	db := r.db.WithContext(ctx)
	if len(roomIDs) > 0 {
		rows := make([]bookingRoomModel, 0, len(roomIDs))
		for _, id := range roomIDs {
			rows = append(rows, bookingRoomModel{BookingID: bookingID, RoomID: id})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(serviceIDs) > 0 {
		rows := make([]bookingServiceModel, 0, len(serviceIDs))
		for _, id := range serviceIDs {
			rows = append(rows, bookingServiceModel{BookingID: bookingID, ServiceID: id})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *BookingRepository) claimNights(ctx context.Context, bookingID int64, roomIDs []int64, in, out domain.Date) error {
	nights := domain.Nights(in, out)
	if len(nights) == 0 || len(roomIDs) == 0 {
		return nil
	}
	rows := make([]roomNightModel, 0, len(nights)*len(roomIDs))
	for _, roomID := range roomIDs {
		for _, n := range nights {
			rows = append(rows, roomNightModel{RoomID: roomID, Night: n.Time, BookingID: bookingID})
		}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return errors.Join(ErrRoomNightTaken, err)
		}
		return err
	}
	return nil
}

func (r *BookingRepository) releaseNights(ctx context.Context, bookingID int64) error {
	return r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&roomNightModel{}).Error
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}
