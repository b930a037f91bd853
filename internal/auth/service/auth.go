package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/tokotrack/tokotrack-backend/internal/auth/jwt"
	"github.com/tokotrack/tokotrack-backend/internal/user/domain"
	"github.com/tokotrack/tokotrack-backend/internal/user/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// AuthService handles authentication
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and the authenticated user
type LoginResponse struct {
	*jwt.TokenPair
	User *domain.User `json:"user"`
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same error whether the email exists or not
		return nil, errors.InvalidCredentials()
	}

	if !user.IsActive {
		return nil, errors.Forbidden("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	tokens, err := s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}

	return &LoginResponse{
		TokenPair: tokens,
		User:      user,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.TokenInvalid()
	}

	if !user.IsActive {
		return nil, errors.Forbidden("account is deactivated")
	}

	return s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

// GetCurrentUser returns the user for the given ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
