package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"civic-registry/internal/domain"
)

const templateColumns = `id, title, body, created_by, created_at, updated_at`

// PostgresTemplatesRepository implements TemplatesRepository. Deleting a
// template leaves messages in place; the schema nulls their template_id.
type PostgresTemplatesRepository struct {
	pgBase
}

func NewPostgresTemplatesRepository(db *sql.DB, queryTimeout time.Duration) *PostgresTemplatesRepository {
	return &PostgresTemplatesRepository{pgBase{db: db, timeout: queryTimeout}}
}

var _ TemplatesRepository = (*PostgresTemplatesRepository)(nil)

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var t domain.Template
	var createdBy sql.NullInt64
	if err := row.Scan(&t.ID, &t.Title, &t.Body, &createdBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedBy = createdBy.Int64
	return &t, nil
}

func (r *PostgresTemplatesRepository) CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	created, err := scanTemplate(r.db.QueryRowContext(ctx,
		`INSERT INTO templates (title, body, created_by) VALUES ($1, $2, $3) RETURNING `+templateColumns,
		t.Title, t.Body, t.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", translateError(err))
	}
	return created, nil
}

func (r *PostgresTemplatesRepository) ListTemplates(ctx context.Context) ([]*domain.Template, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	out := []*domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return out, nil
}

func (r *PostgresTemplatesRepository) GetTemplate(ctx context.Context, id int64) (*domain.Template, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	t, err := scanTemplate(r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func (r *PostgresTemplatesRepository) UpdateTemplate(ctx context.Context, id int64, title, body string) (*domain.Template, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	t, err := scanTemplate(r.db.QueryRowContext(ctx,
		`UPDATE templates SET title = $2, body = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 RETURNING `+templateColumns,
		id, title, body,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return t, nil
}

func (r *PostgresTemplatesRepository) DeleteTemplate(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
