package repository

import (
	"context"
	"time"

	"hotel/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

type notificationLogModel struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	Kind        string         `gorm:"column:kind;size:32;not null"`
	Channel     string         `gorm:"column:channel;size:16;not null"`
	BookingID   int64          `gorm:"column:booking_id;index"`
	RecipientID int64          `gorm:"column:recipient_id"`
	Status      string         `gorm:"column:status;size:16;not null"`
	Error       *string        `gorm:"column:error;type:text"`
	Payload     datatypes.JSON `gorm:"column:payload"`
	CreatedAt   time.Time      `gorm:"column:created_at;index"`
}

func (notificationLogModel) TableName() string { return "notification_logs" }

func toDomainNotificationLog(m notificationLogModel) domain.NotificationLog {
	var errMsg string
	if m.Error != nil {
		errMsg = *m.Error
	}
	return domain.NotificationLog{
		ID:          m.ID,
		Kind:        domain.NotificationKind(m.Kind),
		Channel:     m.Channel,
		BookingID:   m.BookingID,
		RecipientID: m.RecipientID,
		Status:      domain.NotificationStatus(m.Status),
		Error:       errMsg,
		Payload:     []byte(m.Payload),
		CreatedAt:   m.CreatedAt,
	}
}

func (r *NotificationLogRepository) Create(ctx context.Context, l *domain.NotificationLog) error {
	var errMsg *string
	if l.Error != "" {
		v := l.Error
		errMsg = &v
	}
	createdAt := l.CreatedAt.UTC()
	if l.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload := datatypes.JSON(l.Payload)
	if len(payload) == 0 {
		payload = datatypes.JSON("{}")
	}
	m := notificationLogModel{
		Kind:        string(l.Kind),
		Channel:     l.Channel,
		BookingID:   l.BookingID,
		RecipientID: l.RecipientID,
		Status:      string(l.Status),
		Error:       errMsg,
		Payload:     payload,
		CreatedAt:   createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	l.ID = m.ID
	l.CreatedAt = m.CreatedAt
	return nil
}

func (r *NotificationLogRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.NotificationLog, error) {
	var rows []notificationLogModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationLog, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainNotificationLog(m))
	}
	return out, nil
}

// DeleteOlderThan removes log rows created before cutoff and returns how many went.
func (r *NotificationLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&notificationLogModel{})
	return tx.RowsAffected, tx.Error
}
