package notification

import (
	"context"
	"encoding/json"
	"time"

	"hotel/internal/domain"

	"github.com/sirupsen/logrus"
)

type NotificationLogStore interface {
	Create(ctx context.Context, l *domain.NotificationLog) error
}

// LogChannel persists each delivery attempt with a snapshot of the event.
type LogChannel struct {
	store NotificationLogStore
	log   *logrus.Logger
}

func NewLogChannel(store NotificationLogStore, log *logrus.Logger) *LogChannel {
	return &LogChannel{store: store, log: log}
}

func (l *LogChannel) Record(ctx context.Context, ev domain.BookingEvent, channel string, status domain.NotificationStatus, sendErr error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		payload = []byte("{}")
	}
	row := &domain.NotificationLog{
		Kind:      ev.Kind,
		Channel:   channel,
		BookingID: ev.Booking.ID,
		Status:    status,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if ev.Recipient != nil {
		row.RecipientID = ev.Recipient.ID
	}
	if sendErr != nil {
		row.Error = sendErr.Error()
	}

	if err := l.store.Create(ctx, row); err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": ev.Booking.ID,
			"channel":    channel,
		}).Error("notification log write failed")
	}
}
