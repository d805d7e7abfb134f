package room

import (
	"context"
	"errors"
	"strings"

	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/pkg/apperror"
	"hotel/internal/repository"

	"github.com/sirupsen/logrus"
)

type Service struct {
	rooms RoomRepository
	log   *logrus.Logger
}

func NewService(rooms RoomRepository, log *logrus.Logger) *Service {
	return &Service{rooms: rooms, log: log}
}

func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	r := &domain.Room{
		RoomNumber:    strings.TrimSpace(req.RoomNumber),
		RoomType:      domain.RoomType(req.RoomType),
		Description:   strings.TrimSpace(req.Description),
		PricePerNight: req.PricePerNight,
		Status:        domain.RoomAvailable,
		Amenities:     cleanAmenities(req.Amenities),
	}
	if err := validateRoom(r); err != nil {
		return nil, err
	}

	taken, err := s.rooms.ExistsByNumber(ctx, r.RoomNumber, 0)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	if taken {
		return nil, ErrNumberTaken
	}

	if err := s.rooms.Create(ctx, r); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrNumberTaken
		}
		return nil, apperror.Infrastructure(err)
	}
	s.log.WithFields(logrus.Fields{"room_id": r.ID, "number": r.RoomNumber}).Info("room created")
	return r, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil {
		r.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.RoomType != nil {
		r.RoomType = domain.RoomType(*req.RoomType)
	}
	if req.Description != nil {
		r.Description = strings.TrimSpace(*req.Description)
	}
	if req.PricePerNight != nil {
		r.PricePerNight = *req.PricePerNight
	}
	if req.Amenities != nil {
		r.Amenities = cleanAmenities(*req.Amenities)
	}
	if err := validateRoom(r); err != nil {
		return nil, err
	}

	taken, err := s.rooms.ExistsByNumber(ctx, r.RoomNumber, r.ID)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	if taken {
		return nil, ErrNumberTaken
	}

	if err := s.rooms.Update(ctx, r); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRoomNotFound
		case database.IsUniqueViolation(err):
			return nil, ErrNumberTaken
		}
		return nil, apperror.Infrastructure(err)
	}
	return s.Get(ctx, id)
}

// SetStatus is the manual override used by staff, e.g. to take a room into maintenance.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.SetStatus(ctx, []int64{id}, status); err != nil {
		return nil, apperror.Infrastructure(err)
	}
	s.log.WithFields(logrus.Fields{"room_id": id, "from": r.Status, "to": status}).Info("room status set")
	r.Status = status
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	used, err := s.rooms.HasBookings(ctx, id)
	if err != nil {
		return apperror.Infrastructure(err)
	}
	if used {
		return ErrRoomHasBookings
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		return apperror.Infrastructure(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, apperror.Infrastructure(err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, status, roomType string) ([]domain.Room, error) {
	f := repository.RoomFilter{
		Status: domain.RoomStatus(strings.TrimSpace(status)),
		Type:   domain.RoomType(strings.TrimSpace(roomType)),
	}
	if f.Status != "" && !f.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if f.Type != "" && !f.Type.IsValid() {
		return nil, ErrInvalidType
	}
	out, err := s.rooms.List(ctx, f)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return out, nil
}

// Available lists rooms free for every night of [in, out).
func (s *Service) Available(ctx context.Context, in, out domain.Date) ([]domain.Room, error) {
	if in.IsZero() || out.IsZero() || !out.After(in.Time) {
		return nil, ErrDateRange
	}
	rooms, err := s.rooms.ListAvailable(ctx, in, out)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return rooms, nil
}

func validateRoom(r *domain.Room) error {
	if r.RoomNumber == "" {
		return ErrNumberRequired
	}
	if !r.RoomType.IsValid() {
		return ErrInvalidType
	}
	if r.PricePerNight < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func cleanAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" || seen[strings.ToLower(a)] {
			continue
		}
		seen[strings.ToLower(a)] = true
		out = append(out, a)
	}
	return out
}
