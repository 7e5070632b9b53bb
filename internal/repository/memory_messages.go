package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"civic-registry/internal/domain"
)

// MemoryMessagesRepo backs campaign records when DB is disabled.
type MemoryMessagesRepo struct {
	mu       sync.RWMutex
	nextID   int64
	messages map[int64]domain.Message
	now      func() time.Time
}

func NewMemoryMessagesRepo() *MemoryMessagesRepo {
	return &MemoryMessagesRepo{messages: map[int64]domain.Message{}, now: time.Now}
}

var _ MessagesRepository = (*MemoryMessagesRepo)(nil)

func cloneMessage(m domain.Message) *domain.Message {
	m.Recipients = append([]string{}, m.Recipients...)
	m.DeliveryReport = append([]domain.DeliveryEntry{}, m.DeliveryReport...)
	return &m
}

func (r *MemoryMessagesRepo) CreateMessage(_ context.Context, m *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *cloneMessage(*m)
	if row.Status == "" {
		row.Status = domain.MessageStatusSent
	}
	r.nextID++
	row.ID = r.nextID
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.messages[row.ID] = row
	return cloneMessage(row), nil
}

func (r *MemoryMessagesRepo) ListMessages(_ context.Context, senderID *int64) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Message{}
	for _, m := range r.messages {
		if senderID != nil && m.SenderID != *senderID {
			continue
		}
		out = append(out, cloneMessage(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryMessagesRepo) GetMessage(_ context.Context, id int64) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneMessage(m), nil
}

// detachTemplate nulls template_id on every message that referenced id.
func (r *MemoryMessagesRepo) detachTemplate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mid, m := range r.messages {
		if m.TemplateID.Valid && m.TemplateID.Int64 == id {
			m.TemplateID = sql.NullInt64{}
			r.messages[mid] = m
		}
	}
}

// deleteBySender drops every message sent by userID.
func (r *MemoryMessagesRepo) deleteBySender(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mid, m := range r.messages {
		if m.SenderID == userID {
			delete(r.messages, mid)
		}
	}
}
