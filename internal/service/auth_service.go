package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bcard/internal/model"
	"bcard/internal/repository"
	"bcard/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLoginRetries bounds how often a login re-reads the account after losing
// a compare-and-swap race
const maxLoginRetries = 8

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	policy            LockoutPolicy
	initialAdminEmail string
	logger            *zap.Logger
	now               func() time.Time
}

// NewAuthService creates a new AuthService. Registrations for
// initialAdminEmail may request the admin role; nobody else can.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminEmail string, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		policy:            DefaultLockoutPolicy(),
		initialAdminEmail: model.NormalizeEmail(initialAdminEmail),
		logger:            logger,
		now:               time.Now,
	}
}

// serverNow is truncated to the storage precision so values read back
// compare equal to the ones written
func (s *authService) serverNow() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	email := model.NormalizeEmail(req.Email)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if !model.IsValidRole(role) {
		return nil, "", &ValidationError{Field: "role", Message: "must be one of regular, business, admin"}
	}
	if role == model.RoleAdmin && (s.initialAdminEmail == "" || email != s.initialAdminEmail) {
		return nil, "", &ValidationError{Field: "role", Message: "admin accounts cannot be self-registered"}
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, "", &ValidationError{Field: "password", Message: err.Error()}
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.serverNow()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
		Address:      req.Address,
		Image:        req.Image,
		Gender:       req.Gender,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}
	if role == model.RoleAdmin {
		s.logger.Info("registered initial admin", zap.String("user_id", user.ID))
	}

	token, err := s.jwtUtil.GenerateToken(user, false)
	if err != nil {
		s.logger.Error("user created but token generation failed", zap.String("user_id", user.ID), zap.Error(err))
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user, applying the lockout policy, and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)

	// bcrypt is slow, so the result is reused across retries while the
	// stored hash stays the same
	var checkedHash string
	var checkedOK bool
	verifier := func(hash string) func() bool {
		return func() bool {
			if checkedHash != hash {
				checkedHash, checkedOK = hash, utils.CheckPasswordHash(password, hash)
			}
			return checkedOK
		}
	}

	for attempt := 0; attempt < maxLoginRetries; attempt++ {
		user, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, "", fmt.Errorf("error finding user by email: %w", err)
		}
		if user == nil {
			return nil, "", ErrUserNotFound
		}

		decision := s.policy.Evaluate(user, s.serverNow(), verifier(user.PasswordHash))
		if decision.Persist {
			swapped, err := s.userRepo.CompareAndSwapLoginState(ctx, user.ID, user.Role, user.LoginState(), decision.Next)
			if err != nil {
				return nil, "", fmt.Errorf("failed to persist login state: %w", err)
			}
			if !swapped {
				s.logger.Debug("login state changed concurrently, retrying", zap.String("user_id", user.ID), zap.Int("attempt", attempt+1))
				continue
			}
		}
		user.FailedAttempts = decision.Next.FailedAttempts
		user.SuspendedUntil = decision.Next.SuspendedUntil

		if decision.Err != nil {
			var locked *AccountLockedError
			if errors.As(decision.Err, &locked) && decision.Persist {
				s.logger.Warn("account suspended after repeated failed logins", zap.String("user_id", user.ID), zap.Time("until", locked.Until))
			}
			return nil, "", decision.Err
		}

		token, err := s.jwtUtil.GenerateToken(user, true)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate token: %w", err)
		}
		return user, token, nil
	}

	return nil, "", ErrLoginContention
}
