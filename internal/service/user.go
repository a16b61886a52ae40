package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/redis"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// UserService handles user operations.
type UserService struct {
	userRepo repository.UserRepository
	cache    redis.UserCache
	logger   *zap.Logger
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(userRepo repository.UserRepository, cache redis.UserCache, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, cache: cache, logger: logger}
}

// UserInput carries the writable user fields. Nil fields were not supplied.
// Password is stored as a bcrypt hash and never read back.
type UserInput struct {
	Role        *string
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Password    *string
	IsActive    *bool
}

func (in UserInput) requireAll() *domain.ValidationError {
	verr := domain.NewValidationError()
	if in.Email == nil {
		verr.Add("email", msgRequired)
	}
	return verr
}

func (in UserInput) apply(user *domain.User) error {
	if in.Role != nil {
		user.Role = domain.Role(strings.TrimSpace(*in.Role))
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = *in.PhoneNumber
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	user.Normalize()
	return nil
}

// List returns one page of users and the total number of matches.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter, page pagination.Params) ([]*domain.User, int, error) {
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if err := page.Check(total); err != nil {
		return nil, 0, err
	}

	users, err := s.userRepo.List(ctx, filter, page.Window())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Create validates and persists a new user. Role defaults to standard.
func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	user := &domain.User{Role: domain.RoleStandard, IsActive: true}
	if err := in.apply(user); err != nil {
		return nil, err
	}

	verr := in.requireAll()
	verr.Merge(user.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update modifies an existing user and drops its cached principal.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput, partial bool) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if !partial {
		verr = in.requireAll()
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	verr.Merge(user.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return user, nil
}

// Delete removes a user. It fails with repository.ErrConflict while any ride
// references the user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached user", zap.Int64("user_id", id), zap.Error(err))
	}
}
