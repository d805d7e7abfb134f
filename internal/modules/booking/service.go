package booking

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"hotel/internal/domain"
	"hotel/internal/pkg/apperror"
	"hotel/internal/repository"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// StoreTimeout bounds the storage work of one operation. Zero means no bound.
	StoreTimeout time.Duration
	// Initial statuses of new bookings, by who creates them.
	GuestInitialStatus domain.BookingStatus
	StaffInitialStatus domain.BookingStatus
}

type Service struct {
	bookings BookingRepository
	rooms    RoomDirectory
	services ServiceCatalog
	users    UserDirectory
	notifier Notifier
	cfg      Config
	log      *logrus.Logger
}

func NewService(
	bookings BookingRepository,
	rooms RoomDirectory,
	services ServiceCatalog,
	users UserDirectory,
	notifier Notifier,
	cfg Config,
	log *logrus.Logger,
) *Service {
	if cfg.GuestInitialStatus == "" {
		cfg.GuestInitialStatus = domain.BookingConfirmed
	}
	if cfg.StaffInitialStatus == "" {
		cfg.StaffInitialStatus = domain.BookingConfirmed
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		bookings: bookings,
		rooms:    rooms,
		services: services,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor Actor) (*domain.Booking, error) {
	roomIDs, err := normalizeIDs(in.RoomIDs)
	if err != nil {
		return nil, err
	}
	if len(roomIDs) == 0 {
		return nil, ErrNoRooms
	}
	serviceIDs, err := normalizeIDs(in.ExtraServiceIDs)
	if err != nil {
		return nil, err
	}
	if err := validateRange(in.CheckIn, in.CheckOut); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	guestID, err := s.resolveGuest(ctx, in.GuestID, actor)
	if err != nil {
		return nil, err
	}

	services, err := s.lookupServices(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		RoomIDs:         roomIDs,
		GuestID:         guestID,
		CreatedBy:       actor.UserID,
		CheckInDate:     in.CheckIn,
		CheckOutDate:    in.CheckOut,
		Status:          s.initialStatus(actor),
		ExtraServiceIDs: serviceIDs,
	}

	var rooms []domain.Room
	err = s.bookings.Transaction(ctx, func(tx repository.BookingStore) error {
		var err error
		rooms, err = lockBookableRooms(ctx, tx, roomIDs)
		if err != nil {
			return err
		}

		conflict, err := tx.HasConflict(ctx, roomIDs, b.CheckInDate, b.CheckOutDate, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrRoomsBooked
		}

		b.TotalPrice = computePrice(rooms, services, b.Nights())
		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, s.storeErr(err, ErrBookingNotFound)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"guest_id":   b.GuestID,
		"created_by": b.CreatedBy,
		"rooms":      b.RoomIDs,
		"status":     b.Status,
	}).Info("booking created")

	s.syncRooms(ctx, b, domain.RoomBooked)
	s.notify(ctx, domain.NotifBookingCreated, b, rooms, services)
	return b, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, actor Actor) (*domain.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, ActionUpdate, current) {
		return nil, ErrForbidden
	}
	if !isUpdatable(current.Status) {
		return nil, ErrNotUpdatable
	}

	checkIn, checkOut := current.CheckInDate, current.CheckOutDate
	if in.CheckIn != nil {
		checkIn = *in.CheckIn
	}
	if in.CheckOut != nil {
		checkOut = *in.CheckOut
	}
	if err := validateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	serviceIDs := current.ExtraServiceIDs
	if in.ExtraServiceIDs != nil {
		if serviceIDs, err = normalizeIDs(*in.ExtraServiceIDs); err != nil {
			return nil, err
		}
	}
	services, err := s.lookupServices(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	var updated *domain.Booking
	err = s.bookings.Transaction(ctx, func(tx repository.BookingStore) error {
		b, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !isUpdatable(b.Status) {
			return ErrNotUpdatable
		}

		rooms, err := tx.LockRooms(ctx, b.RoomIDs)
		if err != nil {
			return err
		}

		conflict, err := tx.HasConflict(ctx, b.RoomIDs, checkIn, checkOut, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrRoomsBooked
		}

		b.CheckInDate = checkIn
		b.CheckOutDate = checkOut
		b.ExtraServiceIDs = serviceIDs
		b.TotalPrice = computePrice(rooms, services, b.Nights())
		if err := tx.Update(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err, ErrBookingNotFound)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  updated.ID,
		"actor_id":    actor.UserID,
		"total_price": updated.TotalPrice,
	}).Info("booking updated")
	return updated, nil
}

func (s *Service) Confirm(ctx context.Context, id int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, actor, transition{
		action: ActionConfirm,
		to:     domain.BookingConfirmed,
		check: func(from domain.BookingStatus) error {
			if from != domain.BookingPending {
				return ErrNotPending
			}
			return nil
		},
		notify: domain.NotifBookingConfirmed,
	})
}

func (s *Service) CheckIn(ctx context.Context, id int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, actor, transition{
		action: ActionCheckIn,
		to:     domain.BookingCheckedIn,
		check: func(from domain.BookingStatus) error {
			if from != domain.BookingConfirmed {
				return ErrNotConfirmed
			}
			return nil
		},
		notify: domain.NotifCheckedIn,
	})
}

func (s *Service) CheckOut(ctx context.Context, id int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, actor, transition{
		action: ActionCheckOut,
		to:     domain.BookingCheckedOut,
		check: func(from domain.BookingStatus) error {
			if from != domain.BookingCheckedIn {
				return ErrNotCheckedIn
			}
			return nil
		},
		release: true,
		notify:  domain.NotifCheckedOut,
	})
}

func (s *Service) Cancel(ctx context.Context, id int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, actor, transition{
		action: ActionCancel,
		to:     domain.BookingCancelled,
		check: func(from domain.BookingStatus) error {
			switch from {
			case domain.BookingCheckedOut:
				return ErrCancelCheckedOut
			case domain.BookingCancelled:
				return ErrAlreadyCancelled
			}
			return nil
		},
		release: true,
		notify:  domain.NotifCancelled,
	})
}

// Delete removes a booking outright. Rooms held by it are released first.
func (s *Service) Delete(ctx context.Context, id int64, actor Actor) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if id <= 0 {
		return ErrInvalidID
	}

	var b *domain.Booking
	err := s.bookings.Transaction(ctx, func(tx repository.BookingStore) error {
		var err error
		if b, err = tx.GetByID(ctx, id); err != nil {
			return err
		}
		if !CanPerform(actor, ActionDelete, b) {
			return ErrForbidden
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return s.storeErr(err, ErrBookingNotFound)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": id,
		"actor_id":   actor.UserID,
		"status":     b.Status,
	}).Info("booking deleted")

	if b.Status.IsBlocking() {
		s.syncRooms(ctx, b, domain.RoomAvailable)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64, actor Actor) (*domain.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, ActionView, b) {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns bookings matching f. Guests only ever see their own.
func (s *Service) List(ctx context.Context, f ListFilter, actor Actor) ([]domain.Booking, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, apperror.Validation("unknown booking status")
	}
	if !CanPerform(actor, ActionList, nil) {
		if actor.UserID <= 0 {
			return nil, ErrForbidden
		}
		f.GuestID = actor.UserID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.bookings.List(ctx, repository.BookingFilter{
		GuestID: f.GuestID,
		RoomID:  f.RoomID,
		Status:  f.Status,
	})
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return out, nil
}

// CheckAvailability answers whether roomIDs are free for [in, out) and lists
// what blocks them. Guests only see the conflicting bookings they own.
func (s *Service) CheckAvailability(ctx context.Context, roomIDs []int64, in, out domain.Date, actor Actor) (*Availability, error) {
	ids, err := normalizeIDs(roomIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoRooms
	}
	if err := validateRange(in, out); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	overlapping, err := s.bookings.FindOverlapping(ctx, ids, in, out, 0)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}

	res := &Availability{
		Available: len(overlapping) == 0,
		Nights:    domain.NightsBetween(in, out),
		Conflicts: make([]ConflictView, 0, len(overlapping)),
	}
	for i := range overlapping {
		b := &overlapping[i]
		if !CanPerform(actor, ActionView, b) {
			continue
		}
		res.Conflicts = append(res.Conflicts, ConflictView{
			ID:           b.ID,
			Rooms:        b.RoomIDs,
			CheckInDate:  b.CheckInDate,
			CheckOutDate: b.CheckOutDate,
		})
	}
	return res, nil
}

type transition struct {
	action  Action
	to      domain.BookingStatus
	check   func(from domain.BookingStatus) error
	release bool
	notify  domain.NotificationKind
}

func (s *Service) transition(ctx context.Context, id int64, actor Actor, t transition) (*domain.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if id <= 0 {
		return nil, ErrInvalidID
	}

	var b *domain.Booking
	var from domain.BookingStatus
	err := s.bookings.Transaction(ctx, func(tx repository.BookingStore) error {
		var err error
		if b, err = tx.GetByID(ctx, id); err != nil {
			return err
		}
		if !CanPerform(actor, t.action, b) {
			return ErrForbidden
		}
		if err := t.check(b.Status); err != nil {
			return err
		}
		from = b.Status
		return tx.UpdateStatus(ctx, id, from, t.to)
	})
	if err != nil {
		return nil, s.storeErr(err, ErrBookingNotFound)
	}
	b.Status = t.to
	b.UpdatedAt = time.Now().UTC()

	s.log.WithFields(logrus.Fields{
		"booking_id": id,
		"actor_id":   actor.UserID,
		"from":       from,
		"to":         t.to,
	}).Info("booking status changed")

	if t.release {
		s.syncRooms(ctx, b, domain.RoomAvailable)
	}

	var rooms []domain.Room
	if s.notifier != nil {
		if rooms, err = s.rooms.FindByIDs(ctx, b.RoomIDs); err != nil {
			s.log.WithError(err).WithField("booking_id", id).Warn("room snapshot for notification failed")
		}
	}
	services, err := s.snapshotServices(ctx, b.ExtraServiceIDs)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", id).Warn("service snapshot for notification failed")
	}
	s.notify(ctx, t.notify, b, rooms, services)
	return b, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Booking, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, ErrBookingNotFound)
	}
	return b, nil
}

func (s *Service) resolveGuest(ctx context.Context, guestID int64, actor Actor) (int64, error) {
	if !actor.IsStaff() {
		if guestID == 0 {
			guestID = actor.UserID
		}
		if !CanPerform(actor, ActionCreate, &domain.Booking{GuestID: guestID}) {
			return 0, ErrForbidden
		}
		return guestID, nil
	}

	if guestID <= 0 {
		return 0, ErrGuestRequired
	}
	u, err := s.users.GetByID(ctx, guestID)
	if err != nil {
		return 0, s.storeErr(err, ErrGuestNotFound)
	}
	if u.Role != domain.RoleGuest {
		return 0, ErrGuestNotAGuest
	}
	return u.ID, nil
}

func (s *Service) lookupServices(ctx context.Context, ids []int64) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}
	services, err := s.services.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	if len(services) != len(ids) {
		return nil, ErrServiceNotFound
	}
	return services, nil
}

func (s *Service) snapshotServices(ctx context.Context, ids []int64) ([]domain.Service, error) {
	if s.notifier == nil || len(ids) == 0 {
		return nil, nil
	}
	return s.services.FindByIDs(ctx, ids)
}

func (s *Service) initialStatus(actor Actor) domain.BookingStatus {
	if actor.IsStaff() {
		return s.cfg.StaffInitialStatus
	}
	return s.cfg.GuestInitialStatus
}

// syncRooms updates the cached room status after a committed change. Rooms in
// maintenance keep that status. Failure leaves the cache stale but never the
// booking.
func (s *Service) syncRooms(ctx context.Context, b *domain.Booking, status domain.RoomStatus) {
	if err := s.rooms.SyncStatus(ctx, b.RoomIDs, status); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"rooms":      b.RoomIDs,
			"status":     status,
		}).Warn("room status sync failed")
	}
}

func (s *Service) notify(ctx context.Context, kind domain.NotificationKind, b *domain.Booking, rooms []domain.Room, services []domain.Service) {
	if s.notifier == nil {
		return
	}
	ev := domain.BookingEvent{
		Kind:     kind,
		Booking:  *b,
		Rooms:    rooms,
		Services: services,
		At:       time.Now().UTC(),
	}
	guest, err := s.users.GetByID(ctx, b.GuestID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("guest lookup for notification failed")
	} else {
		ev.Recipient = guest
	}
	s.notifier.Notify(ctx, ev)
}

// storeErr maps repository errors onto the booking error taxonomy.
func (s *Service) storeErr(err error, notFound error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrRoomNightTaken):
		return ErrRoomsBooked
	case errors.Is(err, repository.ErrStatusChanged):
		return ErrStatusChanged
	}
	s.log.WithError(err).Error("booking storage failure")
	return apperror.Infrastructure(err)
}

func lockBookableRooms(ctx context.Context, tx repository.BookingStore, ids []int64) ([]domain.Room, error) {
	rooms, err := tx.LockRooms(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rooms) != len(ids) {
		return nil, ErrRoomNotFound
	}
	for _, r := range rooms {
		if r.Status == domain.RoomMaintenance {
			return nil, ErrRoomMaintenance
		}
	}
	return rooms, nil
}

// computePrice is Σ room rate × nights + Σ service price, rounded to cents.
func computePrice(rooms []domain.Room, services []domain.Service, nights int) float64 {
	var total float64
	for _, r := range rooms {
		total += r.PricePerNight * float64(nights)
	}
	for _, svc := range services {
		total += svc.Price
	}
	return math.Round(total*100) / 100
}

func validateRange(in, out domain.Date) error {
	if in.IsZero() || out.IsZero() {
		return ErrDatesRequired
	}
	if !out.After(in.Time) {
		return ErrDateRange
	}
	return nil
}

func isUpdatable(s domain.BookingStatus) bool {
	return s == domain.BookingPending || s == domain.BookingConfirmed
}

// normalizeIDs rejects non-positive ids and returns a sorted set.
func normalizeIDs(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, ErrInvalidID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
