package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// AuthService exchanges admin credentials for access tokens.
type AuthService struct {
	userRepo repository.UserRepository
	issuer   *auth.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, issuer: issuer}
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Login verifies the credentials of an active admin account and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || !user.IsAdmin() {
		return nil, ErrAdminRequired
	}

	accessToken, err := s.issuer.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
	}, nil
}
