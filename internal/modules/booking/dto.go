package booking

import "hotel/internal/domain"

type CreateBookingRequest struct {
	Rooms         []int64     `json:"rooms" binding:"required,min=1,dive,gt=0"`
	CheckInDate   domain.Date `json:"checkInDate" binding:"required"`
	CheckOutDate  domain.Date `json:"checkOutDate" binding:"required"`
	ExtraServices []int64     `json:"extraServices" binding:"omitempty,dive,gt=0"`
	User          int64       `json:"user" binding:"omitempty,gt=0"`
}

type UpdateBookingRequest struct {
	CheckInDate   *domain.Date `json:"checkInDate"`
	CheckOutDate  *domain.Date `json:"checkOutDate"`
	ExtraServices *[]int64     `json:"extraServices"`
}

type ListBookingsQuery struct {
	Status string `form:"status"`
	RoomID int64  `form:"room_id"`
	UserID int64  `form:"user_id"`
}

type CreateInput struct {
	RoomIDs         []int64
	CheckIn         domain.Date
	CheckOut        domain.Date
	ExtraServiceIDs []int64
	GuestID         int64
}

// UpdateInput carries only the fields to change. Rooms are fixed after creation.
type UpdateInput struct {
	CheckIn         *domain.Date
	CheckOut        *domain.Date
	ExtraServiceIDs *[]int64
}

type ListFilter struct {
	Status  domain.BookingStatus
	RoomID  int64
	GuestID int64
}

// ConflictView is the part of an overlapping booking exposed by availability checks.
type ConflictView struct {
	ID           int64       `json:"id"`
	Rooms        []int64     `json:"rooms"`
	CheckInDate  domain.Date `json:"checkInDate"`
	CheckOutDate domain.Date `json:"checkOutDate"`
}

type Availability struct {
	Available bool           `json:"available"`
	Nights    int            `json:"nights"`
	Conflicts []ConflictView `json:"conflicts"`
}
