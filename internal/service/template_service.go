package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

// TemplateService manages reusable message bodies.
type TemplateService interface {
	ListTemplates(ctx context.Context) ([]TemplateDTO, error)
	GetTemplate(ctx context.Context, id int64) (*TemplateDTO, error)
	CreateTemplate(ctx context.Context, caller Caller, req TemplateRequest) (*TemplateDTO, error)
	UpdateTemplate(ctx context.Context, caller Caller, id int64, req TemplateRequest) (*TemplateDTO, error)
	DeleteTemplate(ctx context.Context, caller Caller, id int64) error
	PreviewTemplate(ctx context.Context, id int64, variables map[string]string) (*TemplatePreview, error)
}

// TemplateRequest is the body of template create and update.
type TemplateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TemplatePreview is a template body with placeholders filled in.
type TemplatePreview struct {
	TemplateID int64  `json:"templateId"`
	Message    string `json:"message"`
}

type templateService struct {
	templates repository.TemplatesRepository
	logger    *zap.Logger
}

func NewTemplateService(templates repository.TemplatesRepository, logger *zap.Logger) TemplateService {
	return &templateService{templates: templates, logger: logger}
}

func (req TemplateRequest) normalized() (string, string, error) {
	title, body := strings.TrimSpace(req.Title), strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return "", "", domain.Invalid("Title and body are required")
	}
	return title, body, nil
}

func (s *templateService) ListTemplates(ctx context.Context) ([]TemplateDTO, error) {
	list, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]TemplateDTO, 0, len(list))
	for _, t := range list {
		out = append(out, toTemplateDTO(t))
	}
	return out, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id int64) (*TemplateDTO, error) {
	t, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Template not found", "get template")
	}
	dto := toTemplateDTO(t)
	return &dto, nil
}

func (s *templateService) CreateTemplate(ctx context.Context, caller Caller, req TemplateRequest) (*TemplateDTO, error) {
	title, body, err := req.normalized()
	if err != nil {
		return nil, err
	}
	t, err := s.templates.CreateTemplate(ctx, &domain.Template{Title: title, Body: body, CreatedBy: caller.ID})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.logger.Info("Template created", zap.Int64("template_id", t.ID), zap.Int64("by", caller.ID))
	dto := toTemplateDTO(t)
	return &dto, nil
}

// authorizeOwner loads the template and applies the owner-or-superadmin rule.
func (s *templateService) authorizeOwner(ctx context.Context, caller Caller, id int64) (*domain.Template, error) {
	t, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Template not found", "get template")
	}
	if err := Authorize(caller, Owner{UserID: t.CreatedBy}).Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, caller Caller, id int64, req TemplateRequest) (*TemplateDTO, error) {
	title, body, err := req.normalized()
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeOwner(ctx, caller, id); err != nil {
		return nil, err
	}
	t, err := s.templates.UpdateTemplate(ctx, id, title, body)
	if err != nil {
		return nil, notFoundOr(err, "Template not found", "update template")
	}
	dto := toTemplateDTO(t)
	return &dto, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, caller Caller, id int64) error {
	if _, err := s.authorizeOwner(ctx, caller, id); err != nil {
		return err
	}
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return notFoundOr(err, "Template not found", "delete template")
	}
	s.logger.Info("Template deleted", zap.Int64("template_id", id), zap.Int64("by", caller.ID))
	return nil
}

func (s *templateService) PreviewTemplate(ctx context.Context, id int64, variables map[string]string) (*TemplatePreview, error) {
	t, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Template not found", "get template")
	}
	return &TemplatePreview{TemplateID: t.ID, Message: domain.RenderPlaceholders(t.Body, variables)}, nil
}
