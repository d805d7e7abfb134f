package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogChannel_PersistsAttempts(t *testing.T) {
	db, err := database.Connect(":memory:", quietLogger())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	repo := repository.NewNotificationLogRepository(db)
	rec := NewLogChannel(repo, quietLogger())
	ctx := context.Background()

	ev := sampleEvent(domain.NotifBookingCreated)
	rec.Record(ctx, ev, "email", domain.NotificationSent, nil)
	rec.Record(ctx, ev, "websocket", domain.NotificationFailed, errors.New("socket closed"))

	logs, err := repo.ListByBooking(ctx, 7)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	byChannel := map[string]domain.NotificationLog{}
	for _, l := range logs {
		byChannel[l.Channel] = l
	}
	assert.Equal(t, domain.NotificationSent, byChannel["email"].Status)
	assert.Equal(t, int64(3), byChannel["email"].RecipientID)
	assert.Equal(t, domain.NotificationFailed, byChannel["websocket"].Status)
	assert.Equal(t, "socket closed", byChannel["websocket"].Error)

	var snapshot domain.BookingEvent
	require.NoError(t, json.Unmarshal(byChannel["email"].Payload, &snapshot))
	assert.Equal(t, domain.NotifBookingCreated, snapshot.Kind)
	assert.Equal(t, 6000.0, snapshot.Booking.TotalPrice)
}
