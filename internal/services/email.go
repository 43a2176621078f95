// ABOUTME: Outbound email client speaking the Resend transactional mail API
// ABOUTME: Used by the /email slash-command to forward thread content

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"
)

const defaultEmailFrom = "AgentBoard <noreply@agentboard.app>"

// ResendClient implements Emailer against the Resend API.
type ResendClient struct {
	client *resty.Client
	from   string
	logger *slog.Logger
}

// ResendConfig configures the email client.
type ResendConfig struct {
	BaseURL string // e.g. https://api.resend.com
	APIKey  string
	From    string
	Timeout time.Duration
}

// NewResendClient creates an email client.
func NewResendClient(cfg ResendConfig, logger *slog.Logger) *ResendClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenerateTimeout
	}
	if cfg.From == "" {
		cfg.From = defaultEmailFrom
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey)

	return &ResendClient{
		client: client,
		from:   cfg.From,
		logger: logger.With("component", "email"),
	}
}

// Close releases the underlying HTTP client.
func (c *ResendClient) Close() error {
	return c.client.Close()
}

// Send delivers one plain-text email.
func (c *ResendClient) Send(ctx context.Context, to, subject, body string) error {
	res, err := c.client.R().
		WithContext(ctx).
		SetBody(map[string]any{
			"from":    c.from,
			"to":      []string{to},
			"subject": subject,
			"text":    body,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("email request: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("email send failed: %s", res.Status())
	}
	return nil
}
