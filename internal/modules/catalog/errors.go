package catalog

import "hotel/internal/pkg/apperror"

var (
	ErrServiceNotFound = apperror.NotFound("service not found")
	ErrNameTaken       = apperror.Conflict("service with this name already exists")
	ErrNameRequired    = apperror.Validation("service name is required")
	ErrInvalidPrice    = apperror.Validation("service price must not be negative")
)
