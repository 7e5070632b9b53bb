package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/metrics"
	"civic-registry/internal/repository"
)

// MessageService records campaign sends and hands them to the notifier.
type MessageService interface {
	SendMessage(ctx context.Context, caller Caller, req SendMessageRequest) (*MessageDTO, error)
	ListMessages(ctx context.Context, caller Caller) ([]MessageDTO, error)
	GetMessage(ctx context.Context, caller Caller, id int64) (*MessageDTO, error)
}

// SendMessageRequest is the body of POST /api/messages. Recipients is kept
// raw so ids may arrive as strings or numbers.
type SendMessageRequest struct {
	Recipients json.RawMessage `json:"recipients"`
	Message    string          `json:"message"`
	TemplateID *domain.FlexInt `json:"templateId,omitempty"`
}

type messageService struct {
	messages  repository.MessagesRepository
	templates repository.TemplatesRepository
	notifier  CampaignNotifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewMessageService wires the campaign store. notifier may be nil.
func NewMessageService(
	messages repository.MessagesRepository,
	templates repository.TemplatesRepository,
	notifier CampaignNotifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messages:  messages,
		templates: templates,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ParseRecipients coerces a JSON array of ids into trimmed strings. Numbers
// keep their literal text; blanks, duplicates and non-scalar elements are
// dropped, and the first occurrence of a duplicate wins. ok is false when raw
// is not a non-empty array.
func ParseRecipients(raw json.RawMessage) (ids []string, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}

	seen := make(map[string]struct{}, len(items))
	ids = make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		var id string
		if len(item) > 0 && item[0] == '"' {
			if err := json.Unmarshal(item, &id); err != nil {
				continue
			}
		} else {
			var n json.Number
			if err := json.Unmarshal(item, &n); err != nil {
				continue
			}
			id = n.String()
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, true
}

func (s *messageService) SendMessage(ctx context.Context, caller Caller, req SendMessageRequest) (*MessageDTO, error) {
	recipients, ok := ParseRecipients(req.Recipients)
	if !ok {
		return nil, domain.Invalid("Recipients are required and must be an array")
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, domain.Invalid("Message content is required")
	}
	if len(recipients) == 0 {
		return nil, domain.Invalid("No valid recipient IDs found after processing")
	}

	msg := &domain.Message{
		SenderID:       caller.ID,
		Recipients:     recipients,
		Body:           body,
		Status:         domain.MessageStatusSent,
		DeliveryReport: domain.PendingReport(recipients),
		SentAt:         sql.NullTime{Time: s.now().UTC(), Valid: true},
	}
	if caller.Direction != "" {
		msg.Direction = sql.NullString{String: string(caller.Direction), Valid: true}
	}
	if req.TemplateID != nil {
		if !req.TemplateID.Valid {
			return nil, domain.Invalid("Invalid template ID")
		}
		tid := int64(req.TemplateID.Value)
		if _, err := s.templates.GetTemplate(ctx, tid); err != nil {
			return nil, notFoundOr(err, "Template not found", "get template")
		}
		msg.TemplateID = sql.NullInt64{Int64: tid, Valid: true}
	}

	saved, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("record campaign: %w", err)
	}
	s.metrics.IncCampaign(len(saved.Recipients))
	s.logger.Info("Campaign recorded",
		zap.Int64("message_id", saved.ID),
		zap.Int64("sender_id", saved.SenderID),
		zap.Int("recipients", len(saved.Recipients)),
	)

	dto := toMessageDTO(saved)
	if s.notifier != nil {
		if err := s.notifier.CampaignRecorded(ctx, saved); err != nil {
			s.logger.Warn("Campaign notification failed", zap.Int64("message_id", saved.ID), zap.Error(err))
		}
	}
	return &dto, nil
}

func (s *messageService) ListMessages(ctx context.Context, caller Caller) ([]MessageDTO, error) {
	var sender *int64
	if !caller.IsSuperAdmin() {
		id := caller.ID
		sender = &id
	}
	list, err := s.messages.ListMessages(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]MessageDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toMessageDTO(m))
	}
	return out, nil
}

func (s *messageService) GetMessage(ctx context.Context, caller Caller, id int64) (*MessageDTO, error) {
	m, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Message not found", "get message")
	}
	if err := Authorize(caller, Owner{UserID: m.SenderID}).Err(); err != nil {
		return nil, err
	}
	dto := toMessageDTO(m)
	return &dto, nil
}
