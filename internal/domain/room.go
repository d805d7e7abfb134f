package domain

import "time"

type RoomType string

const (
	RoomSingle RoomType = "Single"
	RoomDouble RoomType = "Double"
	RoomTriple RoomType = "Triple"
	RoomQuad   RoomType = "Quad"
)

func (t RoomType) IsValid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomTriple, RoomQuad:
		return true
	}
	return false
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomBooked      RoomStatus = "booked"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomAvailable, RoomBooked, RoomMaintenance:
		return true
	}
	return false
}

// Room status is a cache of "currently encumbered"; bookings are the source of truth.
type Room struct {
	ID            int64      `json:"id"`
	RoomNumber    string     `json:"roomNumber"`
	RoomType      RoomType   `json:"roomType"`
	Description   string     `json:"description,omitempty"`
	PricePerNight float64    `json:"pricePerNight"`
	Status        RoomStatus `json:"status"`
	Amenities     []string   `json:"amenities"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
