package room

type CreateRoomRequest struct {
	RoomNumber    string   `json:"roomNumber" validate:"required,max=32"`
	RoomType      string   `json:"roomType" validate:"required,oneof=Single Double Triple Quad"`
	Description   string   `json:"description" validate:"max=2000"`
	PricePerNight float64  `json:"pricePerNight" validate:"gte=0"`
	Amenities     []string `json:"amenities" validate:"omitempty,dive,required,max=64"`
}

type UpdateRoomRequest struct {
	RoomNumber    *string   `json:"roomNumber" validate:"omitempty,min=1,max=32"`
	RoomType      *string   `json:"roomType" validate:"omitempty,oneof=Single Double Triple Quad"`
	Description   *string   `json:"description" validate:"omitempty,max=2000"`
	PricePerNight *float64  `json:"pricePerNight" validate:"omitempty,gte=0"`
	Amenities     *[]string `json:"amenities"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available booked maintenance"`
}
