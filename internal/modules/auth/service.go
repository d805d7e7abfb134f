package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/pkg/apperror"
	"hotel/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service contains all business logic for authentication
type Service struct {
	users    UserRepositoryInterface
	jwt      jwtService
	tokenTTL time.Duration
	log      *logrus.Logger
}

func NewService(users UserRepositoryInterface, jwt jwtService, tokenTTL time.Duration, log *logrus.Logger) *Service {
	return &Service{
		users:    users,
		jwt:      jwt,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates a guest account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, &domain.User{
		Email:   req.Email,
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Role:    domain.RoleGuest,
	}, req.Password)
}

// CreateUser is the admin path for accounts of any role.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := domain.UserRole(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return s.createUser(ctx, &domain.User{
		Email: req.Email,
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Role:  role,
	}, req.Password)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Infrastructure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.WithField("user_id", user.ID).Warn("login failed: bad password")
		return nil, ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		return nil, ErrAccountDisabled
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}

	user.PasswordHash = ""
	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Infrastructure(err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	r := domain.UserRole(strings.TrimSpace(role))
	if r != "" && !r.IsValid() {
		return nil, ErrInvalidRole
	}
	users, err := s.users.List(ctx, r)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return users, nil
}

func (s *Service) SetUserStatus(ctx context.Context, actorID, userID int64, status domain.UserStatus) (*domain.User, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if actorID == userID {
		return nil, ErrSelfStatus
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Infrastructure(err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "actor_id": actorID, "status": status}).Info("user status changed")
	return s.GetCurrentUser(ctx, userID)
}

// GetUser is the admin lookup of any account.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.GetCurrentUser(ctx, id)
}

// UpdateUser edits profile fields and, unless the admin targets their own
// account, role and status.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Infrastructure(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		if !role.IsValid() {
			return nil, ErrInvalidRole
		}
		if actorID == id && role != user.Role {
			return nil, ErrSelfRole
		}
		user.Role = role
	}
	if req.Status != nil {
		status := domain.UserStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if actorID == id && status != user.Status {
			return nil, ErrSelfStatus
		}
		user.Status = status
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if err := s.validateEmailUnique(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case database.IsUniqueViolation(err):
			return nil, ErrEmailAlreadyExists
		}
		return nil, apperror.Infrastructure(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actorID}).Info("user updated")
	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes an account with no booking history. Admins cannot delete
// themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	has, err := s.users.HasBookings(ctx, id)
	if err != nil {
		return apperror.Infrastructure(err)
	}
	if has {
		return ErrUserHasBookings
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperror.Infrastructure(err)
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actorID}).Info("user deleted")
	return nil
}

func (s *Service) createUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Status = domain.UserActive

	if err := s.validateEmailUnique(ctx, user.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	user.PasswordHash = hashedPassword

	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, apperror.Infrastructure(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user created")
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return apperror.Infrastructure(err)
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
