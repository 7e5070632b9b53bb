package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"civic-registry/internal/auth"
	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

// UserService is the admin-panel account management surface.
type UserService interface {
	ListUsers(ctx context.Context) ([]UserDTO, error)
	GetUser(ctx context.Context, id int64) (*UserDTO, error)
	UpdateUser(ctx context.Context, caller Caller, id int64, req UpdateUserRequest) (*UserDTO, error)
	DeleteUser(ctx context.Context, caller Caller, id int64) error
}

// UpdateUserRequest is the body of PUT /api/users/{id}. Email is required;
// the rest are optional.
type UpdateUserRequest struct {
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Direction string  `json:"direction"`
	Password  *string `json:"password,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type userService struct {
	users  repository.UsersRepository
	hasher *auth.PasswordHasher
	logger *zap.Logger
}

func NewUserService(users repository.UsersRepository, hasher *auth.PasswordHasher, logger *zap.Logger) UserService {
	return &userService{users: users, hasher: hasher, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.ListUsers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*UserDTO, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "get user")
	}
	dto := toUserDTO(u)
	return &dto, nil
}

func (s *userService) UpdateUser(ctx context.Context, caller Caller, id int64, req UpdateUserRequest) (*UserDTO, error) {
	if err := RequireSuperAdmin(caller).Err(); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, domain.Invalid("Email is required")
	}

	current, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "get user")
	}

	role := current.Role
	if r := strings.TrimSpace(req.Role); r != "" {
		role = domain.Role(r)
	}
	direction, err := domain.ResolveDirection(role, domain.Direction(strings.TrimSpace(req.Direction)))
	if err != nil {
		return nil, err
	}

	patch := domain.UserPatch{Email: &email, Role: &role, IsActive: req.IsActive}
	if direction.Valid {
		d := domain.Direction(direction.String)
		patch.Direction = &d
	} else {
		patch.ClearDirection = true
	}
	if req.Password != nil {
		if len(*req.Password) < MinPasswordLength {
			return nil, domain.Invalid("Password must be at least 6 characters long")
		}
		// Hash first so the write never carries plaintext.
		hash, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	updated, err := s.users.UpdateUser(ctx, id, patch)
	if err != nil {
		if _, ok := repository.AsUniqueViolation(err); ok {
			return nil, domain.Invalid("Email already exists")
		}
		var cv *repository.CheckViolationError
		if errors.As(err, &cv) {
			return nil, domain.Invalid("Invalid data provided. Admin users must have a valid direction.")
		}
		return nil, notFoundOr(err, "User not found", "update user")
	}

	s.logger.Info("User updated",
		zap.Int64("user_id", id),
		zap.Int64("by", caller.ID),
		zap.String("role", string(updated.Role)),
	)
	dto := toUserDTO(updated)
	return &dto, nil
}

func (s *userService) DeleteUser(ctx context.Context, caller Caller, id int64) error {
	if err := RequireSuperAdmin(caller).Err(); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, "User not found", "delete user")
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id), zap.Int64("by", caller.ID))
	return nil
}
