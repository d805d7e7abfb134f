package booking

import "hotel/internal/domain"

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID int64
	Role   domain.UserRole
}

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }

type Action string

const (
	ActionCreate   Action = "create"
	ActionView     Action = "view"
	ActionList     Action = "list-all"
	ActionUpdate   Action = "update"
	ActionConfirm  Action = "confirm"
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
	ActionCancel   Action = "cancel"
	ActionDelete   Action = "delete"
)

// CanPerform reports whether actor may run action against b. Staff may do
// anything; guests only touch their own bookings.
func CanPerform(actor Actor, action Action, b *domain.Booking) bool {
	if actor.UserID <= 0 || !actor.Role.IsValid() {
		return false
	}
	if actor.IsStaff() {
		return true
	}

	switch action {
	case ActionCreate, ActionView, ActionUpdate, ActionCancel, ActionDelete:
		return b != nil && b.GuestID == actor.UserID
	default:
		return false
	}
}
