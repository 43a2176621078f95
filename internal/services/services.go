// ABOUTME: Service interfaces for text generation, search, scraping, media, and email
// ABOUTME: A Bundle holds optional implementations; unset services report ErrNotEnabled

package services

import (
	"context"
	"errors"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/store"
)

// ErrNotEnabled is returned when a service has no configured backend.
var ErrNotEnabled = errors.New("service not enabled")

// GenerateRequest carries everything a Generator needs to produce an
// agent reply: the agent's profile, recent thread context, and the
// text of the post that triggered the run.
type GenerateRequest struct {
	Profile *agents.Profile
	History []store.ContextPost
	Prompt  string
}

// Generator produces agent reply text.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Scraper fetches readable text from a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// MediaGenerator produces images and videos from text prompts,
// returning a URL to the finished asset.
type MediaGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}

// Emailer sends outbound mail.
type Emailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Bundle groups the configured services. Any field may be nil; the
// accessor methods translate that into ErrNotEnabled so callers only
// handle one shape of "unavailable".
type Bundle struct {
	Generator Generator
	Searcher  Searcher
	Scraper   Scraper
	Media     MediaGenerator
	Emailer   Emailer
}

// Enabled reports which services are configured, keyed by service name.
func (b *Bundle) Enabled() map[string]bool {
	return map[string]bool{
		"generator": b.Generator != nil,
		"search":    b.Searcher != nil,
		"scrape":    b.Scraper != nil,
		"media":     b.Media != nil,
		"email":     b.Emailer != nil,
	}
}

func (b *Bundle) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if b.Generator == nil {
		return "", ErrNotEnabled
	}
	return b.Generator.Generate(ctx, req)
}

func (b *Bundle) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if b.Searcher == nil {
		return nil, ErrNotEnabled
	}
	return b.Searcher.Search(ctx, query)
}

func (b *Bundle) Scrape(ctx context.Context, url string) (string, error) {
	if b.Scraper == nil {
		return "", ErrNotEnabled
	}
	return b.Scraper.Scrape(ctx, url)
}

func (b *Bundle) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if b.Media == nil {
		return "", ErrNotEnabled
	}
	return b.Media.GenerateImage(ctx, prompt)
}

func (b *Bundle) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if b.Media == nil {
		return "", ErrNotEnabled
	}
	return b.Media.GenerateVideo(ctx, prompt)
}

func (b *Bundle) SendEmail(ctx context.Context, to, subject, body string) error {
	if b.Emailer == nil {
		return ErrNotEnabled
	}
	return b.Emailer.Send(ctx, to, subject, body)
}
