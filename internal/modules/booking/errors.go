package booking

import "hotel/internal/pkg/apperror"

var (
	ErrBookingNotFound = apperror.NotFound("booking not found")
	ErrRoomNotFound    = apperror.NotFound("room not found")
	ErrServiceNotFound = apperror.NotFound("service not found")
	ErrGuestNotFound   = apperror.NotFound("guest not found")

	ErrNoRooms        = apperror.Validation("at least one room is required")
	ErrInvalidID      = apperror.Validation("ids must be positive")
	ErrDatesRequired  = apperror.Validation("check-in and check-out dates are required")
	ErrDateRange      = apperror.Validation("check-out date must be after check-in date")
	ErrGuestRequired  = apperror.Validation("guest is required when booking on behalf of someone else")
	ErrGuestNotAGuest = apperror.Validation("booking guest must be a user with the guest role")

	ErrRoomsBooked      = apperror.Conflict("rooms already booked for these dates")
	ErrRoomMaintenance  = apperror.Conflict("room is under maintenance")
	ErrNotUpdatable     = apperror.InvalidState("only pending or confirmed bookings can be updated")
	ErrNotPending       = apperror.InvalidState("only pending bookings can be confirmed")
	ErrNotConfirmed     = apperror.InvalidState("must be confirmed before check-in")
	ErrNotCheckedIn     = apperror.InvalidState("must be checked in before check-out")
	ErrAlreadyCancelled = apperror.InvalidState("booking is already cancelled")
	ErrCancelCheckedOut = apperror.InvalidState("cannot cancel after check-out")
	ErrStatusChanged    = apperror.InvalidState("booking status changed, reload and retry")

	ErrForbidden = apperror.Forbidden("not allowed to perform this action on the booking")
)
