// ABOUTME: Page scraping client speaking the ScraperAPI proxy interface
// ABOUTME: Returns raw page content for agents to digest

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"
)

// ScraperAPIClient implements Scraper against ScraperAPI.
type ScraperAPIClient struct {
	client *resty.Client
	apiKey string
	logger *slog.Logger
}

// ScraperConfig configures the scraping client.
type ScraperConfig struct {
	BaseURL string // e.g. https://api.scraperapi.com
	APIKey  string
	Timeout time.Duration
}

// NewScraperAPIClient creates a scraping client. Scrapes get a longer
// timeout than plain API calls since the proxy fetches the page itself.
func NewScraperAPIClient(cfg ScraperConfig, logger *slog.Logger) *ScraperAPIClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenerateTimeout + 10*time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &ScraperAPIClient{
		client: client,
		apiKey: cfg.APIKey,
		logger: logger.With("component", "scrape"),
	}
}

// Close releases the underlying HTTP client.
func (c *ScraperAPIClient) Close() error {
	return c.client.Close()
}

// Scrape fetches the page at url through the proxy and returns its body.
func (c *ScraperAPIClient) Scrape(ctx context.Context, url string) (string, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":      c.apiKey,
			"url":          url,
			"country_code": "us",
		}).
		Get("/")
	if err != nil {
		return "", fmt.Errorf("scrape request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("scrape failed: %s", res.Status())
	}
	return res.String(), nil
}
