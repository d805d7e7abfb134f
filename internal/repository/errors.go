package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrRoomNightTaken means another blocking booking already claims one of the (room, night) pairs.
	ErrRoomNightTaken = errors.New("room night already taken")
	// ErrStatusChanged means the booking left the expected status before the update landed.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
