package auth

import "hotel/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrAccountDisabled    = apperror.Forbidden("account is not active")
	ErrEmailAlreadyExists = apperror.Conflict("email already exists")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrInvalidRole        = apperror.Validation("role must be one of guest, staff, admin")
	ErrInvalidStatus      = apperror.Validation("status must be one of active, inactive, suspended")
	ErrSelfStatus         = apperror.Validation("admins cannot change their own status")
	ErrSelfRole           = apperror.Validation("admins cannot change their own role")
	ErrSelfDelete         = apperror.Validation("cannot delete your own account")
	ErrUserHasBookings    = apperror.Conflict("user has bookings and cannot be deleted")
	ErrNameRequired       = apperror.Validation("name is required")
)
