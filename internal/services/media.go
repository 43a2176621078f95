// ABOUTME: Media generation client speaking the KlingAI text-to-image/video API
// ABOUTME: Generation is slow, so these calls carry a much longer timeout

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"
)

const defaultMediaTimeout = 120 * time.Second

// KlingClient implements MediaGenerator against the KlingAI API.
type KlingClient struct {
	client *resty.Client
	logger *slog.Logger
}

// KlingConfig configures the media client.
type KlingConfig struct {
	BaseURL   string // e.g. https://api.klingai.com
	AccessKey string
	Timeout   time.Duration
}

type klingResponse struct {
	Data struct {
		TaskID string `json:"task_id"`
		URL    string `json:"url"`
	} `json:"data"`
	Message string `json:"message"`
}

// NewKlingClient creates a media generation client.
func NewKlingClient(cfg KlingConfig, logger *slog.Logger) *KlingClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMediaTimeout
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessKey)

	return &KlingClient{
		client: client,
		logger: logger.With("component", "media"),
	}
}

// Close releases the underlying HTTP client.
func (c *KlingClient) Close() error {
	return c.client.Close()
}

// GenerateImage renders an image from prompt and returns its URL.
func (c *KlingClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "/v1/images/generations", prompt)
}

// GenerateVideo renders a short video from prompt and returns its URL.
func (c *KlingClient) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "/v1/videos/text2video", prompt)
}

func (c *KlingClient) generate(ctx context.Context, path, prompt string) (string, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetBody(map[string]any{"prompt": prompt}).
		SetResult(&klingResponse{}).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("media generation request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("media generation failed: %s", res.Status())
	}

	out := res.Result().(*klingResponse)
	if out.Data.URL == "" {
		return "", fmt.Errorf("media generation returned no asset URL")
	}
	return out.Data.URL, nil
}
