package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bcard/internal/model"
	"bcard/internal/repository"
	"bcard/internal/utils"

	"go.uber.org/zap"
)

// MaxSuspendHours bounds an administrative suspension (100 years)
const MaxSuspendHours = 100 * 365 * 24

// Actor is the authenticated caller of an operation, as read from its token
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// UserService exposes the public views of accounts and administrative edits
type UserService interface {
	ListUsers(ctx context.Context) ([]model.PublicUser, error)
	GetUser(ctx context.Context, id string) (*model.PublicUser, error)
	UpdateUser(ctx context.Context, actor Actor, id string, req model.UpdateUserRequest) (*model.PublicUser, error)
	UpdateProfile(ctx context.Context, actor Actor, id string, req model.UpdateProfileRequest) (*model.PublicUser, error)
	DeleteUser(ctx context.Context, actor Actor, id string) (*model.PublicUser, error)
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger, now: time.Now}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	public := make([]model.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.PublicUser, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// UpdateUser changes the role of an account or overrides its suspension.
// A positive SuspendHours suspends from now, anything else lifts it.
func (s *userService) UpdateUser(ctx context.Context, actor Actor, id string, req model.UpdateUserRequest) (*model.PublicUser, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if req.Role == nil && req.SuspendHours == nil {
		return nil, &ValidationError{Message: "either role or suspend_hours is required"}
	}

	var err error
	switch {
	case req.Role != nil:
		if !model.IsValidRole(*req.Role) {
			return nil, &ValidationError{Field: "role", Message: "must be one of regular, business, admin"}
		}
		err = s.repo.UpdateRole(ctx, id, *req.Role)
	case *req.SuspendHours > MaxSuspendHours:
		return nil, &ValidationError{Field: "suspend_hours", Message: fmt.Sprintf("must be at most %d", MaxSuspendHours)}
	case *req.SuspendHours > 0:
		until := s.now().UTC().Add(time.Duration(*req.SuspendHours * float64(time.Hour))).Truncate(time.Microsecond)
		err = s.repo.UpdateSuspension(ctx, id, &until)
	default:
		err = s.repo.UpdateSuspension(ctx, id, nil)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("account updated by admin", zap.String("user_id", id), zap.String("admin_id", actor.UserID))
	return s.GetUser(ctx, id)
}

// UpdateProfile replaces the profile of an account. Only the owner or an admin
// may do so. A non-empty password is checked against the policy and stored
// hashed; role and login state never change here.
func (s *userService) UpdateProfile(ctx context.Context, actor Actor, id string, req model.UpdateProfileRequest) (*model.PublicUser, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, ErrForbidden
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Password != "" {
		if err := utils.ValidatePassword(req.Password); err != nil {
			return nil, &ValidationError{Field: "password", Message: err.Error()}
		}
		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	user.Name = req.Name
	user.Email = model.NormalizeEmail(req.Email)
	user.Phone = req.Phone
	user.Address = req.Address
	user.Image = req.Image
	user.Gender = req.Gender
	user.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", zap.String("user_id", id), zap.String("actor_id", actor.UserID),
		zap.Bool("password_changed", req.Password != ""))
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account. Only the owner or an admin may do so.
func (s *userService) DeleteUser(ctx context.Context, actor Actor, id string) (*model.PublicUser, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, ErrForbidden
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
