package domain

import (
	"database/sql"
	"time"
)

// User is an account row (users table).
type User struct {
	ID        int64          `db:"id"`
	Email     string         `db:"email"`    // UNIQUE, stored lowercase
	Password  string         `db:"password"` // bcrypt hash
	Role      Role           `db:"role"`
	Direction sql.NullString `db:"direction"` // NULL for superadmin
	IsActive  bool           `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// DirectionValue returns the region or "" when absent.
func (u *User) DirectionValue() Direction {
	if !u.Direction.Valid {
		return ""
	}
	return Direction(u.Direction.String)
}

// UserPatch carries the columns an update may touch. Nil means unchanged.
// Password, when set, must already be hashed.
type UserPatch struct {
	Email          *string
	Password       *string
	Role           *Role
	Direction      *Direction
	ClearDirection bool
	IsActive       *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Role == nil &&
		p.Direction == nil && !p.ClearDirection && p.IsActive == nil
}

// ResolveDirection applies the role/region rule: admin requires a valid
// direction, superadmin never has one. The returned NullString is what must be
// stored.
func ResolveDirection(role Role, direction Direction) (sql.NullString, error) {
	switch role {
	case RoleSuperAdmin:
		return sql.NullString{}, nil
	case RoleAdmin:
		if direction == "" {
			return sql.NullString{}, Invalid("Direction is required for admin users")
		}
		if !direction.Valid() {
			return sql.NullString{}, Invalid("Direction must be East, West, North, or South")
		}
		return sql.NullString{String: string(direction), Valid: true}, nil
	default:
		return sql.NullString{}, Invalid("Role must be admin or superadmin")
	}
}
