package repository

import (
	"context"

	"civic-registry/internal/domain"
)

// TemplatesRepository persists message templates.
type TemplatesRepository interface {
	CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error)
	ListTemplates(ctx context.Context) ([]*domain.Template, error)
	GetTemplate(ctx context.Context, id int64) (*domain.Template, error)
	UpdateTemplate(ctx context.Context, id int64, title, body string) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id int64) error
}
