package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/redis"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// PrincipalService resolves token claims into the current state of the
// account. The stored role is authoritative, not the role in the token.
type PrincipalService struct {
	userRepo repository.UserRepository
	cache    redis.UserCache
	logger   *zap.Logger
}

// NewPrincipalService creates a new PrincipalService. cache may be nil.
func NewPrincipalService(userRepo repository.UserRepository, cache redis.UserCache, logger *zap.Logger) *PrincipalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrincipalService{userRepo: userRepo, cache: cache, logger: logger}
}

// Load returns the principal for claims, or ErrUnauthorized when the account
// no longer exists or is inactive.
func (s *PrincipalService) Load(ctx context.Context, claims *auth.Claims) (*auth.Principal, error) {
	cached := s.fromCache(ctx, claims.UserID)
	if cached == nil {
		user, err := s.userRepo.GetByID(ctx, claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		if err != nil {
			return nil, err
		}

		cached = &redis.CachedUser{ID: user.ID, Email: user.Email, Role: string(user.Role), IsActive: user.IsActive}
		s.toCache(ctx, cached)
	}

	if !cached.IsActive {
		return nil, ErrUnauthorized
	}
	return &auth.Principal{UserID: cached.ID, Email: cached.Email, Role: domain.Role(cached.Role)}, nil
}

func (s *PrincipalService) fromCache(ctx context.Context, id int64) *redis.CachedUser {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.GetUser(ctx, id)
	if err != nil {
		s.logger.Warn("user cache read failed", zap.Int64("user_id", id), zap.Error(err))
		return nil
	}
	return cached
}

func (s *PrincipalService) toCache(ctx context.Context, user *redis.CachedUser) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logger.Warn("user cache write failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}
