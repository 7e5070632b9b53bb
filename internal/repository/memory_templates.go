package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"civic-registry/internal/domain"
)

// MemoryTemplatesRepo backs templates when DB is disabled.
type MemoryTemplatesRepo struct {
	mu        sync.RWMutex
	nextID    int64
	templates map[int64]domain.Template
	now       func() time.Time
	onDelete  func(id int64)
}

func NewMemoryTemplatesRepo() *MemoryTemplatesRepo {
	return &MemoryTemplatesRepo{templates: map[int64]domain.Template{}, now: time.Now}
}

var _ TemplatesRepository = (*MemoryTemplatesRepo)(nil)

func (r *MemoryTemplatesRepo) CreateTemplate(_ context.Context, t *domain.Template) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	row := *t
	row.ID = r.nextID
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.templates[row.ID] = row
	return &row, nil
}

func (r *MemoryTemplatesRepo) ListTemplates(_ context.Context) ([]*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Template, 0, len(r.templates))
	for _, t := range r.templates {
		row := t
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

func (r *MemoryTemplatesRepo) GetTemplate(_ context.Context, id int64) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r *MemoryTemplatesRepo) UpdateTemplate(_ context.Context, id int64, title, body string) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	t.Title, t.Body = title, body
	t.UpdatedAt = r.now()
	r.templates[id] = t
	return &t, nil
}

func (r *MemoryTemplatesRepo) DeleteTemplate(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.templates[id]; !ok {
		r.mu.Unlock()
		return sql.ErrNoRows
	}
	delete(r.templates, id)
	hook := r.onDelete
	r.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return nil
}

// deleteByOwner drops every template created by userID.
func (r *MemoryTemplatesRepo) deleteByOwner(userID int64) {
	r.mu.Lock()
	var removed []int64
	for id, t := range r.templates {
		if t.CreatedBy == userID {
			delete(r.templates, id)
			removed = append(removed, id)
		}
	}
	hook := r.onDelete
	r.mu.Unlock()

	if hook != nil {
		for _, id := range removed {
			hook(id)
		}
	}
}
