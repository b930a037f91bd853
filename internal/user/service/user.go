package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/tokotrack/tokotrack-backend/internal/user/domain"
	"github.com/tokotrack/tokotrack-backend/internal/user/events"
	"github.com/tokotrack/tokotrack-backend/internal/user/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// UserService handles user business logic
type UserService struct {
	userRepo  *repository.UserRepository
	publisher *events.UserEventPublisher
	logger    *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo *repository.UserRepository,
	publisher *events.UserEventPublisher,
	log *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    log,
	}
}

// CreateUserRequest represents a create user request
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" validate:"required,oneof=admin employee"`
	Password string  `json:"password" validate:"required,min=6"`
}

// UpdateUserRequest represents an update user request.
// Password is optional; when set the password is rehashed.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin employee"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*domain.User, error) {
	// Check if email already exists
	existing, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, errors.Conflict("email already in use")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishUserCreated(ctx, user)
	}

	return user, nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, page, perPage int) ([]*domain.User, int64, error) {
	return s.userRepo.List(ctx, page, perPage)
}

// Update updates a user
func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})

	if req.Email != nil && *req.Email != user.Email {
		// Check if email already exists
		existing, _ := s.userRepo.GetByEmail(ctx, *req.Email)
		if existing != nil && existing.ID != id {
			return nil, errors.Conflict("email already in use")
		}
		changes["email"] = map[string]string{"from": user.Email, "to": *req.Email}
		user.Email = *req.Email
	}

	if req.Name != nil && *req.Name != user.Name {
		changes["name"] = map[string]string{"from": user.Name, "to": *req.Name}
		user.Name = *req.Name
	}

	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if req.Role != nil && *req.Role != user.Role {
		if !domain.ValidRole(*req.Role) {
			return nil, errors.BadRequest("invalid role")
		}
		changes["role"] = map[string]string{"from": user.Role, "to": *req.Role}
		user.Role = *req.Role
	}

	if req.IsActive != nil && *req.IsActive != user.IsActive {
		changes["is_active"] = *req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.Password != nil && *req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Internal("failed to hash password")
		}
		if err := s.userRepo.UpdatePassword(ctx, id, string(hashedPassword)); err != nil {
			return nil, err
		}
		changes["password"] = "changed"
	}

	if s.publisher != nil && len(changes) > 0 {
		s.publisher.PublishUserUpdated(ctx, user, changes)
	}

	return user, nil
}

// Delete soft deletes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishUserDeleted(ctx, id, user.Email)
	}

	return nil
}
