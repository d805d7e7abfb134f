package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked-in"
	BookingCheckedOut BookingStatus = "checked-out"
	BookingCancelled  BookingStatus = "cancelled"
)

// BlockingStatuses are the statuses that hold rooms for their date range.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn}

func (s BookingStatus) IsBlocking() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn:
		return true
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID              int64         `json:"id"`
	RoomIDs         []int64       `json:"rooms"`
	GuestID         int64         `json:"user"`
	CreatedBy       int64         `json:"createdBy"`
	CheckInDate     Date          `json:"checkInDate"`
	CheckOutDate    Date          `json:"checkOutDate"`
	TotalPrice      float64       `json:"totalPrice"`
	Status          BookingStatus `json:"status"`
	ExtraServiceIDs []int64       `json:"extraServices"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Nights returns the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckInDate, b.CheckOutDate)
}

// HasRoom reports whether the booking holds the given room.
func (b *Booking) HasRoom(roomID int64) bool {
	for _, id := range b.RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// Overlaps reports whether [in, out) shares at least one night with the booking.
func (b *Booking) Overlaps(in, out Date) bool {
	return RangesOverlap(b.CheckInDate, b.CheckOutDate, in, out)
}
