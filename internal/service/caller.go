package service

import (
	"database/sql"
	"fmt"

	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

// Caller is the verified identity a request runs as. Services trust its role
// and direction without re-checking the token.
type Caller struct {
	ID        int64
	Email     string
	Role      domain.Role
	Direction domain.Direction
}

func (c Caller) IsSuperAdmin() bool { return c.Role == domain.RoleSuperAdmin }

// notFoundOr maps a missing row to a 404 domain error and wraps anything else.
func notFoundOr(err error, message, op string) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) {
		return domain.NotFound(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
