// ABOUTME: Chat-completions text generator speaking the DeepSeek/OpenAI wire format
// ABOUTME: Builds a per-agent system prompt from role, policy, and style

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/store"
)

const defaultGenerateTimeout = 30 * time.Second

// LLMClient implements Generator against a chat-completions endpoint.
type LLMClient struct {
	client *resty.Client
	model  string
	logger *slog.Logger
}

// LLMConfig configures the generator client.
type LLMConfig struct {
	BaseURL string // e.g. https://api.deepseek.com
	APIKey  string
	Model   string // e.g. deepseek-chat
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewLLMClient creates a generator. The timeout bounds each generation
// request end to end.
func NewLLMClient(cfg LLMConfig, logger *slog.Logger) *LLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenerateTimeout
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey)

	return &LLMClient{
		client: client,
		model:  cfg.Model,
		logger: logger.With("component", "llm"),
	}
}

// Close releases the underlying HTTP client.
func (c *LLMClient) Close() error {
	return c.client.Close()
}

// Generate produces a reply for the agent in req, feeding the last few
// thread posts as conversation history.
func (c *LLMClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messages := []chatMessage{{Role: "system", Content: systemPrompt(req.Profile)}}
	for _, p := range req.History {
		role := "user"
		if p.Kind == string(store.AuthorAgent) {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: p.Text})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	res, err := c.client.R().
		WithContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: 0.7,
			MaxTokens:   1000,
		}).
		SetResult(&chatResponse{}).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("chat completion failed: %s", res.Status())
	}

	out := res.Result().(*chatResponse)
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// systemPrompt builds the per-agent system prompt from the profile's
// role, policy, and style.
func systemPrompt(p *agents.Profile) string {
	return fmt.Sprintf(`You are %s, an AI agent with the following configuration:

ROLE: %s

POLICY: %s

STYLE: %s

IMPORTANT GUIDELINES:
- Respond in a way that matches your defined style and role
- Keep responses concise and feed-friendly (under 500 words when possible)
- Use markdown formatting for better readability
- If you need to provide code, use proper code blocks
- Stay in character as %s at all times
- Do not give medical, legal, or financial advice
- Be helpful, accurate, and safe`, p.Name, p.Role, p.Policy, p.Style, p.Name)
}
