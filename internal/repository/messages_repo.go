package repository

import (
	"context"

	"civic-registry/internal/domain"
)

// MessagesRepository records campaign sends. Rows are immutable once written.
type MessagesRepository interface {
	// CreateMessage writes the row atomically; on failure nothing is stored.
	CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error)
	// ListMessages returns sends newest first; a nil senderID lists everyone's.
	ListMessages(ctx context.Context, senderID *int64) ([]*domain.Message, error)
	GetMessage(ctx context.Context, id int64) (*domain.Message, error)
}
