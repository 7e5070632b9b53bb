package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
	"civic-registry/internal/service/mocks"
)

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
		ok   bool
	}{
		{"strings and numbers", `[" 12 ", 7, "abc"]`, []string{"12", "7", "abc"}, true},
		{"duplicates keep first", `["3", 3, "1", " 3"]`, []string{"3", "1"}, true},
		{"blanks and objects dropped", `["", "  ", {"id": 1}, null, true, 5]`, []string{"5"}, true},
		{"all blank", `["", " "]`, []string{}, true},
		{"empty array", `[]`, nil, false},
		{"not an array", `"12"`, nil, false},
		{"missing", ``, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRecipients(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	ms := repository.NewMemoryStore()
	notifier := mocks.NewMockCampaignNotifier(ctrl)
	svc := NewMessageService(ms.Messages, ms.Templates, notifier, nil, zap.NewNop())

	tpl, err := ms.Templates.CreateTemplate(ctx, &domain.Template{Title: "t", Body: "b", CreatedBy: eastCaller.ID})
	require.NoError(t, err)

	notifier.EXPECT().
		CampaignRecorded(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *domain.Message) error {
			assert.Equal(t, []string{"12", "7"}, msg.Recipients)
			msg.DeliveryReport = nil
			return errors.New("broker down")
		})

	got, err := svc.SendMessage(ctx, eastCaller, SendMessageRequest{
		Recipients: json.RawMessage(`["12", 7, "12", ""]`),
		Message:    "  Ward meeting at 6  ",
		TemplateID: domain.IntValue(int(tpl.ID)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ward meeting at 6", got.Message)
	assert.Equal(t, domain.MessageStatusSent, got.Status)
	assert.Equal(t, eastCaller.ID, got.SenderID)
	require.NotNil(t, got.Direction)
	assert.Equal(t, "East", *got.Direction)
	require.NotNil(t, got.TemplateID)
	assert.Equal(t, tpl.ID, *got.TemplateID)
	assert.NotNil(t, got.SentAt)
	assert.Len(t, got.DeliveryReport, 2)

	stored, err := ms.Messages.GetMessage(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.DeliveryEntry{
		{PersonID: "12", Status: "pending"},
		{PersonID: "7", Status: "pending"},
	}, stored.DeliveryReport)
}

func TestMessageService_SendValidation(t *testing.T) {
	ctx := context.Background()
	ms := repository.NewMemoryStore()
	svc := NewMessageService(ms.Messages, ms.Templates, nil, nil, zap.NewNop())

	tests := []struct {
		name    string
		req     SendMessageRequest
		code    domain.ErrorCode
		message string
	}{
		{"no recipients", SendMessageRequest{Message: "hi"}, domain.CodeInvalidInput, "Recipients are required and must be an array"},
		{"recipients not array", SendMessageRequest{Recipients: json.RawMessage(`"1"`), Message: "hi"}, domain.CodeInvalidInput, "Recipients are required and must be an array"},
		{"blank message", SendMessageRequest{Recipients: json.RawMessage(`["1"]`), Message: "   "}, domain.CodeInvalidInput, "Message content is required"},
		{"no usable ids", SendMessageRequest{Recipients: json.RawMessage(`["", " "]`), Message: "hi"}, domain.CodeInvalidInput, "No valid recipient IDs found after processing"},
		{"unknown template", SendMessageRequest{Recipients: json.RawMessage(`["1"]`), Message: "hi", TemplateID: domain.IntValue(404)}, domain.CodeNotFound, "Template not found"},
		{"bad template id", SendMessageRequest{Recipients: json.RawMessage(`["1"]`), Message: "hi", TemplateID: &domain.FlexInt{}}, domain.CodeInvalidInput, "Invalid template ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, eastCaller, tt.req)
			requireCode(t, err, tt.code, tt.message)
		})
	}

	list, err := ms.Messages.ListMessages(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessageService_ListAndGetScope(t *testing.T) {
	ctx := context.Background()
	ms := repository.NewMemoryStore()
	svc := NewMessageService(ms.Messages, ms.Templates, nil, nil, zap.NewNop())

	send := func(c Caller, body string) *MessageDTO {
		m, err := svc.SendMessage(ctx, c, SendMessageRequest{Recipients: json.RawMessage(`["1"]`), Message: body})
		require.NoError(t, err)
		return m
	}
	e := send(eastCaller, "east")
	w := send(westCaller, "west")
	s := send(superCaller, "all")
	assert.Nil(t, s.Direction)

	mine, err := svc.ListMessages(ctx, eastCaller)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, e.ID, mine[0].ID)

	all, err := svc.ListMessages(ctx, superCaller)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.GetMessage(ctx, eastCaller, w.ID)
	requireCode(t, err, domain.CodeForbidden, "Access denied")

	got, err := svc.GetMessage(ctx, superCaller, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "west", got.Message)

	_, err = svc.GetMessage(ctx, superCaller, 999)
	requireCode(t, err, domain.CodeNotFound, "Message not found")
}
