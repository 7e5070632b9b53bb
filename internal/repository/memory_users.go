package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"civic-registry/internal/domain"
)

// MemoryUsersRepo backs accounts when DB is disabled.
type MemoryUsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
	now    func() time.Time
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[int64]domain.User{}, now: time.Now}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) emailTaken(email string, skipID int64) bool {
	for id, u := range r.users {
		if id != skipID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryUsersRepo) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *u
	row.Email = strings.ToLower(row.Email)
	if r.emailTaken(row.Email, 0) {
		return nil, NewUniqueViolation("users_email_key")
	}
	r.nextID++
	row.ID = r.nextID
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.users[row.ID] = row
	return &row, nil
}

func (r *MemoryUsersRepo) GetUser(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r *MemoryUsersRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			row := u
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryUsersRepo) ListUsers(_ context.Context, activeOnly bool) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.User{}
	for _, u := range r.users {
		if activeOnly && !u.IsActive {
			continue
		}
		row := u
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryUsersRepo) UpdateUser(_ context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if patch.Empty() {
		return &u, nil
	}
	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		if r.emailTaken(email, id) {
			return nil, NewUniqueViolation("users_email_key")
		}
		u.Email = email
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.ClearDirection {
		u.Direction = sql.NullString{}
	} else if patch.Direction != nil {
		u.Direction = sql.NullString{String: string(*patch.Direction), Valid: true}
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	u.UpdatedAt = r.now()
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUsersRepo) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.users, id)
	return nil
}
