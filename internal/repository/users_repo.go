package repository

import (
	"context"

	"civic-registry/internal/domain"
)

// UsersRepository persists accounts. Emails are lowercased by every method
// that accepts one.
type UsersRepository interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
