package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

func TestTemplateService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	ms := repository.NewMemoryStore()
	svc := NewTemplateService(ms.Templates, zap.NewNop())

	_, err := svc.CreateTemplate(ctx, eastCaller, TemplateRequest{Title: " ", Body: "x"})
	requireCode(t, err, domain.CodeInvalidInput, "Title and body are required")

	tpl, err := svc.CreateTemplate(ctx, eastCaller, TemplateRequest{Title: " Greeting ", Body: "Hello {{name}}"})
	require.NoError(t, err)
	assert.Equal(t, "Greeting", tpl.Title)
	assert.Equal(t, eastCaller.ID, tpl.CreatedBy)

	list, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.UpdateTemplate(ctx, westCaller, tpl.ID, TemplateRequest{Title: "Hijack", Body: "x"})
	requireCode(t, err, domain.CodeForbidden, "Access denied")

	updated, err := svc.UpdateTemplate(ctx, eastCaller, tpl.ID, TemplateRequest{Title: "Greeting", Body: "Hi {{name}} of {{ward}}"})
	require.NoError(t, err)
	assert.Equal(t, "Hi {{name}} of {{ward}}", updated.Body)

	preview, err := svc.PreviewTemplate(ctx, tpl.ID, map[string]string{"name": "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Asha of {{ward}}", preview.Message)

	_, err = svc.UpdateTemplate(ctx, eastCaller, 999, TemplateRequest{Title: "a", Body: "b"})
	requireCode(t, err, domain.CodeNotFound, "Template not found")

	requireCode(t, svc.DeleteTemplate(ctx, westCaller, tpl.ID), domain.CodeForbidden, "Access denied")
	require.NoError(t, svc.DeleteTemplate(ctx, superCaller, tpl.ID))

	_, err = svc.GetTemplate(ctx, tpl.ID)
	requireCode(t, err, domain.CodeNotFound, "Template not found")
}
