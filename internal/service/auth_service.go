package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"civic-registry/internal/auth"
	"civic-registry/internal/domain"
	"civic-registry/internal/metrics"
	"civic-registry/internal/repository"
	"civic-registry/internal/store"
)

// MinPasswordLength applies to password changes.
const MinPasswordLength = 6

// AuthService covers registration, login and the caller's own account.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Verify(ctx context.Context, caller Caller) (*UserDTO, error)
	ListActiveUsers(ctx context.Context) ([]UserDTO, error)
	ChangePassword(ctx context.Context, caller Caller, req ChangePasswordRequest) error
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Direction string `json:"direction"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of PUT /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResult carries a fresh token and the account it was issued for.
type AuthResult struct {
	Token string
	User  UserDTO
}

// LockoutPolicy throttles repeated login failures per email.
type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

type authService struct {
	users   repository.UsersRepository
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenManager
	kv      store.KV
	lockout LockoutPolicy
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAuthService wires the account store, hashing and token issuing. kv may
// be nil, which disables lockout.
func NewAuthService(
	users repository.UsersRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	kv store.KV,
	lockout LockoutPolicy,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		kv:      kv,
		lockout: lockout,
		metrics: m,
		logger:  logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" || strings.TrimSpace(req.Role) == "" {
		return nil, domain.Invalid("Email, password, and role are required")
	}
	role := domain.Role(strings.TrimSpace(req.Role))
	direction, err := domain.ResolveDirection(role, domain.Direction(strings.TrimSpace(req.Direction)))
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Invalid("User with this email already exists")
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.CreateUser(ctx, &domain.User{
		Email:     email,
		Password:  hash,
		Role:      role,
		Direction: direction,
		IsActive:  true,
	})
	if err != nil {
		if _, ok := repository.AsUniqueViolation(err); ok {
			return nil, domain.Invalid("User with this email already exists")
		}
		var cv *repository.CheckViolationError
		if errors.As(err, &cv) {
			return nil, domain.Invalid("Invalid data provided. Please check all required fields.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered",
		zap.Int64("user_id", created.ID),
		zap.String("role", string(created.Role)),
		zap.String("direction", string(created.DirectionValue())),
	)
	return &AuthResult{Token: token, User: toUserDTO(created)}, nil
}

func (s *authService) lockoutKey(email string) string {
	return "civic-registry:login-failures:" + email
}

func (s *authService) lockoutEnabled() bool {
	return s.kv != nil && s.lockout.MaxAttempts > 0
}

func (s *authService) lockedOut(ctx context.Context, email string) bool {
	if !s.lockoutEnabled() {
		return false
	}
	v, err := s.kv.Get(ctx, s.lockoutKey(email))
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Lockout lookup failed", zap.String("email", email), zap.Error(err))
		}
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	return n >= s.lockout.MaxAttempts
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	s.metrics.IncLogin("failure")
	if !s.lockoutEnabled() {
		return
	}
	if _, err := s.kv.Incr(ctx, s.lockoutKey(email), s.lockout.Window); err != nil {
		s.logger.Warn("Failed to record login failure", zap.String("email", email), zap.Error(err))
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.Invalid("Email and password are required")
	}

	if s.lockedOut(ctx, email) {
		s.metrics.IncLogin("locked")
		return nil, domain.NewError(domain.CodeRateLimited, "Too many failed login attempts. Please try again later.")
	}

	invalid := domain.Unauthorized("Invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			s.recordFailure(ctx, email)
			return nil, invalid
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		s.metrics.IncLogin("failure")
		return nil, domain.Unauthorized("Account is deactivated. Contact administrator.")
	}

	ok, err := s.hasher.ComparePassword(user.Password, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, invalid
	}

	if s.lockoutEnabled() {
		if err := s.kv.Del(ctx, s.lockoutKey(email)); err != nil {
			s.logger.Warn("Failed to reset login failures", zap.String("email", email), zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s.metrics.IncLogin("success")
	s.logger.Info("Login successful", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &AuthResult{Token: token, User: toUserDTO(user)}, nil
}

func (s *authService) Verify(ctx context.Context, caller Caller) (*UserDTO, error) {
	user, err := s.users.GetUser(ctx, caller.ID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "get user")
	}
	if !user.IsActive {
		return nil, domain.Unauthorized("Account is deactivated")
	}
	dto := toUserDTO(user)
	return &dto, nil
}

func (s *authService) ListActiveUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.ListUsers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

func (s *authService) ChangePassword(ctx context.Context, caller Caller, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return domain.Invalid("Current password and new password are required")
	}
	if len(req.NewPassword) < MinPasswordLength {
		return domain.Invalid("New password must be at least 6 characters long")
	}

	user, err := s.users.GetUser(ctx, caller.ID)
	if err != nil {
		return notFoundOr(err, "User not found", "get user")
	}

	ok, err := s.hasher.ComparePassword(user.Password, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Unauthorized("Current password is incorrect")
	}

	// Compare against the stored hash before the new one exists.
	same, err := s.hasher.ComparePassword(user.Password, req.NewPassword)
	if err != nil {
		return err
	}
	if same {
		return domain.Invalid("New password must be different from current password")
	}

	hash, err := s.hasher.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdateUser(ctx, user.ID, domain.UserPatch{Password: &hash}); err != nil {
		return notFoundOr(err, "User not found", "update password")
	}
	s.logger.Info("Password changed", zap.Int64("user_id", user.ID))
	return nil
}
