package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-registry/internal/domain"
)

var userRowColumns = []string{"id", "email", "password", "role", "direction", "is_active", "created_at", "updated_at"}

func setupMockUsersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresUsersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresUsersRepository(db, time.Second)
}

func TestPostgresUsers_CreateUser_LowercasesEmail(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@x.com", "hash", "admin", "East", true).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "a@x.com", "hash", "admin", "East", true, now, now))

	u, err := repo.CreateUser(context.Background(), &domain.User{
		Email: "A@X.com", Password: "hash", Role: domain.RoleAdmin,
		Direction: sql.NullString{String: "East", Valid: true}, IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, domain.DirectionEast, u.DirectionValue())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_CreateUser_DuplicateEmail(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.CreateUser(context.Background(), &domain.User{Email: "a@x.com", Role: domain.RoleSuperAdmin})

	uv, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "email", uv.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_GetUserByEmail_Normalizes(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("root@x.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(2, "root@x.com", "hash", "superadmin", nil, true, now, now))

	u, err := repo.GetUserByEmail(context.Background(), "  Root@X.com ")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, u.Role)
	assert.False(t, u.Direction.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_ListUsers_ActiveOnly(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE is_active = true ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.ListUsers(context.Background(), true)

	require.NoError(t, err)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_UpdateUser_ClearsDirection(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	now := time.Now()
	role := domain.RoleSuperAdmin
	email := "Boss@X.com"

	mock.ExpectQuery(`UPDATE users SET email = \$2, role = \$3, direction = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = \$1`).
		WithArgs(int64(3), "boss@x.com", "superadmin").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(3, "boss@x.com", "hash", "superadmin", nil, true, now, now))

	u, err := repo.UpdateUser(context.Background(), 3, domain.UserPatch{Email: &email, Role: &role, ClearDirection: true})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_DeleteUser_NotFound(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteUser(context.Background(), 9)

	assert.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
