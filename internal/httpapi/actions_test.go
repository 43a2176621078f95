// ABOUTME: Tests for the direct service endpoints
// ABOUTME: Stubs each collaborator and checks status mapping and audit side effects

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/auth"
	"github.com/yaam/agentboard/internal/services"
)

type searcherFunc func(ctx context.Context, query string) ([]services.SearchResult, error)

func (f searcherFunc) Search(ctx context.Context, query string) ([]services.SearchResult, error) {
	return f(ctx, query)
}

type scraperFunc func(ctx context.Context, url string) (string, error)

func (f scraperFunc) Scrape(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

type mediaStub struct {
	url string
}

func (m *mediaStub) GenerateImage(_ context.Context, _ string) (string, error) {
	return m.url, nil
}

func (m *mediaStub) GenerateVideo(_ context.Context, _ string) (string, error) {
	return m.url, nil
}

type emailerFunc func(ctx context.Context, to, subject, body string) error

func (f emailerFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

func newActionsEnv(t *testing.T, bundle *services.Bundle) *testEnv {
	t.Helper()
	if bundle.Generator == nil {
		bundle.Generator = services.NewMockGenerator()
	}
	return newTestEnvWith(t, auth.NewJWTVerifier([]byte("test-secret")), bundle)
}

func TestAgentPromptReturnsReply(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/agents/prompt", tok, AgentPromptRequest{AgentHandle: "@grok", Prompt: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "grok", body["agent"])
	assert.NotEmpty(t, body["response"])
}

func TestAgentPromptUnknownAgent(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/agents/prompt", tok, AgentPromptRequest{AgentHandle: "nobody", Prompt: "hello"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSearchDisabled(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/search/web", tok, SearchRequest{Query: "golang"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestWebSearchReturnsResults(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{
		Searcher: searcherFunc(func(_ context.Context, query string) ([]services.SearchResult, error) {
			return []services.SearchResult{{Title: "Go", Link: "https://go.dev", Snippet: query}}, nil
		}),
	})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/search/web", tok, SearchRequest{Query: "golang"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	type searchResponse struct {
		Query   string                  `json:"query"`
		Results []services.SearchResult `json:"results"`
	}
	body := decode[searchResponse](t, resp)
	assert.Equal(t, "golang", body.Query)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "https://go.dev", body.Results[0].Link)
}

func TestScrapeTruncatesLongContent(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{
		Scraper: scraperFunc(func(_ context.Context, _ string) (string, error) {
			return strings.Repeat("a", maxScrapeResponse+100), nil
		}),
	})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/scrape", tok, ScrapeRequest{URL: "https://example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Len(t, body["content"], maxScrapeResponse)
}

func TestGenerateImageRecordsAsset(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{
		Media: &mediaStub{url: "https://cdn.example.com/img.png"},
	})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/media/images/generate", tok, MediaGenerateRequest{Prompt: "a fox"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "https://cdn.example.com/img.png", body["url"])

	assets := env.audit.Media(0)
	require.Len(t, assets, 1)
	assert.Equal(t, "image", assets[0].Kind)
	assert.Equal(t, "alice", assets[0].RequestedBy)

	logged, _ := env.audit.Query(audit.Query{Type: audit.EventMediaImageGenerate})
	assert.Len(t, logged, 1)
}

func TestGenerateVideoDisabled(t *testing.T) {
	env := newActionsEnv(t, &services.Bundle{})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/media/videos/generate", tok, MediaGenerateRequest{Prompt: "a fox"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestSendEmailValidation(t *testing.T) {
	var gotTo, gotSubject string
	env := newActionsEnv(t, &services.Bundle{
		Emailer: emailerFunc(func(_ context.Context, to, subject, _ string) error {
			gotTo, gotSubject = to, subject
			return nil
		}),
	})
	tok := env.token(t, "alice")

	resp := env.do(t, http.MethodPost, "/email/send", tok, EmailSendRequest{To: "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/email/send", tok, EmailSendRequest{To: "a@b.c", Subject: "hi", Text: "body"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, "a@b.c", gotTo)
	assert.Equal(t, "hi", gotSubject)
}
