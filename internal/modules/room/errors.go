package room

import "hotel/internal/pkg/apperror"

var (
	ErrRoomNotFound    = apperror.NotFound("room not found")
	ErrNumberTaken     = apperror.Conflict("room number already exists")
	ErrRoomHasBookings = apperror.Conflict("room is referenced by bookings")
	ErrInvalidType     = apperror.Validation("room type must be one of Single, Double, Triple, Quad")
	ErrInvalidStatus   = apperror.Validation("room status must be one of available, booked, maintenance")
	ErrInvalidPrice    = apperror.Validation("price per night must not be negative")
	ErrNumberRequired  = apperror.Validation("room number is required")
	ErrDateRange       = apperror.Validation("check-out date must be after check-in date")
)
