package domain

import "time"

type NotificationKind string

const (
	NotifBookingCreated   NotificationKind = "BookingCreated"
	NotifBookingConfirmed NotificationKind = "BookingConfirmed"
	NotifCheckedIn        NotificationKind = "CheckedIn"
	NotifCheckedOut       NotificationKind = "CheckedOut"
	NotifCancelled        NotificationKind = "Cancelled"
)

type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationSkipped NotificationStatus = "skipped"
)

// NotificationLog records one delivery attempt of a booking event on one channel.
type NotificationLog struct {
	ID          int64              `json:"id"`
	Kind        NotificationKind   `json:"kind"`
	Channel     string             `json:"channel"`
	BookingID   int64              `json:"bookingId"`
	RecipientID int64              `json:"recipientId"`
	Status      NotificationStatus `json:"status"`
	Error       string             `json:"error,omitempty"`
	Payload     []byte             `json:"-"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// BookingEvent is what the booking lifecycle hands to the notifier after a
// successful write. Recipient is the guest the stay is for.
type BookingEvent struct {
	Kind      NotificationKind `json:"kind"`
	Booking   Booking          `json:"booking"`
	Recipient *User            `json:"recipient,omitempty"`
	Rooms     []Room           `json:"rooms"`
	Services  []Service        `json:"services"`
	At        time.Time        `json:"at"`
}
