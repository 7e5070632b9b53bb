package mqtt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civic-registry/internal/domain"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(topic string, retained bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, retained: retained, payload: payload})
	return nil
}

func TestCampaignPublisher_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := NewCampaignPublisher(pub, "civic/campaigns", zap.NewNop())

	sentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := &domain.Message{
		ID:         42,
		SenderID:   7,
		Direction:  sql.NullString{String: "East", Valid: true},
		TemplateID: sql.NullInt64{Int64: 3, Valid: true},
		Recipients: []string{"1", "2"},
		Body:       "hello",
		SentAt:     sql.NullTime{Time: sentAt, Valid: true},
	}
	require.NoError(t, p.CampaignRecorded(context.Background(), msg))
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "civic/campaigns/East", pub.sent[0].topic)
	assert.False(t, pub.sent[0].retained)

	var event CampaignEvent
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &event))
	assert.Equal(t, "campaign.recorded", event.Event)
	assert.Equal(t, int64(42), event.MessageID)
	require.NotNil(t, event.TemplateID)
	assert.Equal(t, int64(3), *event.TemplateID)
	assert.Equal(t, []string{"1", "2"}, event.Recipients)
	assert.True(t, sentAt.Equal(event.SentAt))
}

func TestCampaignPublisher_NoRegionTopic(t *testing.T) {
	pub := &fakePublisher{}
	p := NewCampaignPublisher(pub, "civic/campaigns", zap.NewNop())

	require.NoError(t, p.CampaignRecorded(context.Background(), &domain.Message{ID: 1}))
	assert.Equal(t, "civic/campaigns/all", pub.sent[0].topic)
}

func TestCampaignPublisher_Errors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	p := NewCampaignPublisher(pub, "t", zap.NewNop())
	assert.EqualError(t, p.CampaignRecorded(context.Background(), &domain.Message{}), "not connected")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.CampaignRecorded(ctx, &domain.Message{}), context.Canceled)
}
