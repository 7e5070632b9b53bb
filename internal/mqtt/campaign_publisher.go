package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"civic-registry/internal/domain"
)

// Publisher is the subset of the broker client the publisher needs.
// The shared broker client satisfies it.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// CampaignEvent is the payload published when a campaign is recorded.
type CampaignEvent struct {
	Event      string    `json:"event"`
	MessageID  int64     `json:"messageId"`
	SenderID   int64     `json:"senderId"`
	Direction  *string   `json:"direction"`
	TemplateID *int64    `json:"templateId"`
	Recipients []string  `json:"recipients"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

const campaignRecordedEvent = "campaign.recorded"

// CampaignPublisher announces recorded campaigns on an MQTT topic so
// downstream dispatchers can deliver them.
type CampaignPublisher struct {
	client Publisher
	topic  string
	logger *zap.Logger
}

func NewCampaignPublisher(client Publisher, topic string, logger *zap.Logger) *CampaignPublisher {
	return &CampaignPublisher{client: client, topic: topic, logger: logger}
}

// Topic returns the per-region topic for a message: <base>/<direction>, or
// <base>/all when the sender has no region.
func (p *CampaignPublisher) Topic(msg *domain.Message) string {
	if msg.Direction.Valid && msg.Direction.String != "" {
		return p.topic + "/" + msg.Direction.String
	}
	return p.topic + "/all"
}

func (p *CampaignPublisher) CampaignRecorded(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := CampaignEvent{
		Event:      campaignRecordedEvent,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		Recipients: msg.Recipients,
		Message:    msg.Body,
		SentAt:     msg.SentAt.Time,
	}
	if msg.Direction.Valid {
		d := msg.Direction.String
		event.Direction = &d
	}
	if msg.TemplateID.Valid {
		id := msg.TemplateID.Int64
		event.TemplateID = &id
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign event: %w", err)
	}

	topic := p.Topic(msg)
	if err := p.client.Publish(topic, false, payload); err != nil {
		return err
	}
	p.logger.Debug("Campaign event published",
		zap.String("topic", topic),
		zap.Int64("message_id", msg.ID),
		zap.Int("payload_size", len(payload)),
	)
	return nil
}
