// Package identity contains the authentication application service.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizbooks/backend/internal/domain/identity"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService authenticates users and issues JWT token pairs
type AuthService struct {
	users  identity.Repository
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.Repository, tokens *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// LoginResult carries the issued tokens and the authenticated user
type LoginResult struct {
	User   *identity.User
	Tokens *auth.TokenPair
}

// Login verifies credentials and issues an access/refresh token pair.
// A missing user and a wrong password return the same error so the response
// does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}
	if !user.Active {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "User account is disabled")
	}

	tokens, err := s.tokens.GenerateTokenPair(user.CompanyID, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", user.CompanyID.String()),
	)
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	tokens, err := s.tokens.RefreshTokenPair(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	return tokens, nil
}

// RegisterUserRequest is a request to create a login for a company
type RegisterUserRequest struct {
	CompanyID   uuid.UUID
	Username    string
	Password    string
	DisplayName string
}

// RegisterUser creates a new user account
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*identity.User, error) {
	existing, err := s.users.FindByUsername(ctx, strings.TrimSpace(strings.ToLower(req.Username)))
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	user, err := identity.NewUser(req.CompanyID, req.Username, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", user.CompanyID.String()),
	)
	return user, nil
}
