package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"civic-registry/internal/auth"
	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

var (
	superCaller = Caller{ID: 1, Email: "root@example.com", Role: domain.RoleSuperAdmin}
	eastCaller  = Caller{ID: 2, Email: "east@example.com", Role: domain.RoleAdmin, Direction: domain.DirectionEast}
	westCaller  = Caller{ID: 3, Email: "west@example.com", Role: domain.RoleAdmin, Direction: domain.DirectionWest}
)

func newTestHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour, "civic-registry-test")
}

func personInput(name, phone, aadhar, pan string) domain.PersonInput {
	return domain.PersonInput{
		Name:         domain.Str(name),
		Age:          domain.IntValue(30),
		Phone:        domain.Str(phone),
		Direction:    domain.Str("East"),
		AadharNumber: domain.Str(aadhar),
		PanNumber:    domain.Str(pan),
		Gender:       domain.Str("Female"),
		Community:    domain.Str("OBC"),
	}
}

func seedUser(t *testing.T, users repository.UsersRepository, email, password string, role domain.Role, dir domain.Direction) *domain.User {
	t.Helper()
	hash, err := newTestHasher().HashPassword(password)
	require.NoError(t, err)
	d, err := domain.ResolveDirection(role, dir)
	require.NoError(t, err)
	u, err := users.CreateUser(context.Background(), &domain.User{
		Email:     email,
		Password:  hash,
		Role:      role,
		Direction: d,
		IsActive:  true,
	})
	require.NoError(t, err)
	return u
}

func requireCode(t *testing.T, err error, code domain.ErrorCode, message string) {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	require.Equal(t, code, de.Code)
	if message != "" {
		require.Equal(t, message, de.Message)
	}
}
