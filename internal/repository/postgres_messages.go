package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"civic-registry/internal/domain"
)

const messageColumns = `id, sender_id, direction, template_id, recipients, message, status,
	delivery_report, sent_at, created_at, updated_at`

// PostgresMessagesRepository implements MessagesRepository on the messages table.
type PostgresMessagesRepository struct {
	pgBase
}

func NewPostgresMessagesRepository(db *sql.DB, queryTimeout time.Duration) *PostgresMessagesRepository {
	return &PostgresMessagesRepository{pgBase{db: db, timeout: queryTimeout}}
}

var _ MessagesRepository = (*PostgresMessagesRepository)(nil)

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var senderID sql.NullInt64
	var recipients pq.StringArray
	var report []byte
	err := row.Scan(&m.ID, &senderID, &m.Direction, &m.TemplateID, &recipients, &m.Body, &m.Status,
		&report, &m.SentAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.SenderID = senderID.Int64
	m.Recipients = []string(recipients)
	if m.Recipients == nil {
		m.Recipients = []string{}
	}
	if m.DeliveryReport, err = decodeDeliveryReport(report); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMessagesRepository) CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	report, err := encodeDeliveryReport(m.DeliveryReport)
	if err != nil {
		return nil, fmt.Errorf("failed to encode delivery report: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := m.Status
	if status == "" {
		status = domain.MessageStatusSent
	}

	created, err := scanMessage(tx.QueryRowContext(ctx,
		`INSERT INTO messages (sender_id, direction, template_id, recipients, message, status, delivery_report, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		 RETURNING `+messageColumns,
		m.SenderID, m.Direction, m.TemplateID, pq.StringArray(m.Recipients), m.Body, status, report, m.SentAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", translateError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *PostgresMessagesRepository) ListMessages(ctx context.Context, senderID *int64) ([]*domain.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + messageColumns + ` FROM messages`
	args := []any{}
	if senderID != nil {
		query += ` WHERE sender_id = $1`
		args = append(args, *senderID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []*domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}

func (r *PostgresMessagesRepository) GetMessage(ctx context.Context, id int64) (*domain.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	m, err := scanMessage(r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}
