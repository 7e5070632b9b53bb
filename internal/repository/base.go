package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// pgBase carries the pool handle and the per-call query timeout shared by
// every Postgres repository.
type pgBase struct {
	db      *sql.DB
	timeout time.Duration
}

func (b pgBase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
