package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"civic-registry/internal/domain"
)

const userColumns = `id, email, password, role, direction, is_active, created_at, updated_at`

// PostgresUsersRepository implements UsersRepository on the users table.
type PostgresUsersRepository struct {
	pgBase
}

func NewPostgresUsersRepository(db *sql.DB, queryTimeout time.Duration) *PostgresUsersRepository {
	return &PostgresUsersRepository{pgBase{db: db, timeout: queryTimeout}}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &role, &u.Direction, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, role, direction, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		strings.ToLower(u.Email), u.Password, string(u.Role), u.Direction, u.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return created, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context, activeOnly bool) ([]*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, nil
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return r.GetUser(ctx, id)
	}

	set := []string{}
	args := []any{id}
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Email != nil {
		add("email", strings.ToLower(*patch.Email))
	}
	if patch.Password != nil {
		add("password", *patch.Password)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.ClearDirection {
		set = append(set, "direction = NULL")
	} else if patch.Direction != nil {
		add("direction", string(*patch.Direction))
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`, strings.Join(set, ", "), userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", translateError(err))
	}
	return u, nil
}

func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
