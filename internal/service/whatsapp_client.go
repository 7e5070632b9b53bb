package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WhatsAppRequest is the provider's send body.
type WhatsAppRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// WhatsAppClient posts text messages to the configured provider endpoint.
type WhatsAppClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWhatsAppClient builds a client for baseURL. token, when set, is sent as
// a bearer credential.
func NewWhatsAppClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &WhatsAppClient{httpClient: client, logger: logger}
}

func (c *WhatsAppClient) SendText(ctx context.Context, to, message string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(WhatsAppRequest{To: to, Message: message}).
		Post("/send")
	if err != nil {
		c.logger.Error("WhatsApp API call failed", zap.Error(err))
		return fmt.Errorf("failed to call WhatsApp API: %w", err)
	}
	if resp.StatusCode() != 200 {
		c.logger.Error("WhatsApp API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("WhatsApp API error: status %d", resp.StatusCode())
	}
	return nil
}

var _ WhatsAppSender = (*WhatsAppClient)(nil)
