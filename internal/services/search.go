// ABOUTME: Web search client speaking the Serper.dev API
// ABOUTME: Returns the organic results reduced to title, link, and snippet

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"
)

// SerperClient implements Searcher against the Serper.dev search API.
type SerperClient struct {
	client *resty.Client
	logger *slog.Logger
}

// SerperConfig configures the search client.
type SerperConfig struct {
	BaseURL string // e.g. https://google.serper.dev
	APIKey  string
	Timeout time.Duration
}

type serperResponse struct {
	Organic []SearchResult `json:"organic"`
}

// NewSerperClient creates a search client.
func NewSerperClient(cfg SerperConfig, logger *slog.Logger) *SerperClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenerateTimeout
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-API-KEY", cfg.APIKey)

	return &SerperClient{
		client: client,
		logger: logger.With("component", "search"),
	}
}

// Close releases the underlying HTTP client.
func (c *SerperClient) Close() error {
	return c.client.Close()
}

// Search runs a web search and returns up to ten organic results.
func (c *SerperClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetBody(map[string]any{"q": query, "num": 10}).
		SetResult(&serperResponse{}).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.Status())
	}
	return res.Result().(*serperResponse).Organic, nil
}
