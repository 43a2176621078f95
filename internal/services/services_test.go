// ABOUTME: Tests for the service bundle and outbound API clients
// ABOUTME: Clients are exercised against local test servers

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/store"
)

func TestBundleNilServicesReportNotEnabled(t *testing.T) {
	b := &Bundle{}
	ctx := context.Background()

	_, err := b.Generate(ctx, GenerateRequest{})
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = b.Search(ctx, "anything")
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = b.Scrape(ctx, "https://example.com")
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = b.GenerateImage(ctx, "a fox")
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = b.GenerateVideo(ctx, "a fox running")
	assert.ErrorIs(t, err, ErrNotEnabled)

	err = b.SendEmail(ctx, "dev@example.com", "subject", "body")
	assert.ErrorIs(t, err, ErrNotEnabled)
}

func TestMockGeneratorIsDeterministic(t *testing.T) {
	g := NewMockGenerator()
	req := GenerateRequest{
		Profile: &agents.Profile{Handle: "grok", Name: "Grok"},
		Prompt:  "how do goroutines work",
	}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "how do goroutines work")
}

func TestMockGeneratorUnknownAgentFallback(t *testing.T) {
	g := NewMockGenerator()

	out, err := g.Generate(context.Background(), GenerateRequest{
		Profile: &agents.Profile{Handle: "newbie"},
		Prompt:  "hello",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "newbie")
	assert.Contains(t, out, "hello")
}

func TestLLMClientGenerate(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "generated reply"}},
			},
		})
	}))
	defer srv.Close()

	c := NewLLMClient(LLMConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "deepseek-chat"}, nil)
	defer c.Close()

	out, err := c.Generate(context.Background(), GenerateRequest{
		Profile: &agents.Profile{Handle: "grok", Name: "Grok", Role: "witty assistant"},
		History: contextHistory(t),
		Prompt:  "what now?",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated reply", out)

	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Grok")
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "what now?", captured.Messages[3].Content)
	assert.Equal(t, "deepseek-chat", captured.Model)
}

// contextHistory builds a two-post history: one human, one agent.
func contextHistory(t *testing.T) []store.ContextPost {
	t.Helper()
	now := time.Now().UTC()
	return []store.ContextPost{
		{Author: "alice", Text: "original question", Timestamp: now, Kind: string(store.AuthorHuman)},
		{Author: "grok", Text: "earlier answer", Timestamp: now, Kind: string(store.AuthorAgent)},
	}
}

func TestLLMClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewLLMClient(LLMConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"}, nil)
	defer c.Close()

	_, err := c.Generate(context.Background(), GenerateRequest{
		Profile: &agents.Profile{Handle: "grok"},
		Prompt:  "hi",
	})
	assert.Error(t, err)
}

func TestLLMClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(LLMConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"}, nil)
	defer c.Close()

	_, err := c.Generate(context.Background(), GenerateRequest{
		Profile: &agents.Profile{Handle: "grok"},
		Prompt:  "hi",
	})
	assert.ErrorContains(t, err, "no choices")
}

func TestSerperClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "go routers", body["q"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[{"title":"Routers","link":"https://example.com","snippet":"about routers"}]}`))
	}))
	defer srv.Close()

	c := NewSerperClient(SerperConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	defer c.Close()

	results, err := c.Search(context.Background(), "go routers")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Routers", results[0].Title)
	assert.Equal(t, "https://example.com", results[0].Link)
}

func TestScraperAPIClientScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "https://example.com/page", r.URL.Query().Get("url"))
		_, _ = w.Write([]byte("<html>page body</html>"))
	}))
	defer srv.Close()

	c := NewScraperAPIClient(ScraperConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	defer c.Close()

	body, err := c.Scrape(context.Background(), "https://example.com/page")
	require.NoError(t, err)
	assert.Contains(t, body, "page body")
}

func TestKlingClientGenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"task_id":"t1","url":"https://cdn.example.com/img.png"}}`))
	}))
	defer srv.Close()

	c := NewKlingClient(KlingConfig{BaseURL: srv.URL, AccessKey: "k"}, nil)
	defer c.Close()

	url, err := c.GenerateImage(context.Background(), "a red fox")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/img.png", url)
}

func TestKlingClientMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"task_id":"t1"}}`))
	}))
	defer srv.Close()

	c := NewKlingClient(KlingConfig{BaseURL: srv.URL, AccessKey: "k"}, nil)
	defer c.Close()

	_, err := c.GenerateVideo(context.Background(), "a fox running")
	assert.ErrorContains(t, err, "no asset URL")
}

func TestResendClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"dev@example.com"}, body["to"])
		assert.Equal(t, "thread update", body["subject"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "k"}, nil)
	defer c.Close()

	err := c.Send(context.Background(), "dev@example.com", "thread update", "body text")
	require.NoError(t, err)
}
