// Package openai implements the llm.Provider interface over the OpenAI
// chat completions API. The provider has no native batch submission;
// batch calls degrade to sequential requests at the coordinator.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/hochfrequenz/app-forge/internal/llm"
)

const (
	defaultModel     = "gpt-4-turbo"
	defaultMaxTokens = 4096
)

// Client talks to the OpenAI API
type Client struct {
	client *gopenai.Client
	model  string
}

// Option configures a Client
type Option func(*gopenai.ClientConfig, *Client)

// WithModel overrides the default model
func WithModel(model string) Option {
	return func(_ *gopenai.ClientConfig, c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API base URL (for OpenAI-compatible gateways)
func WithBaseURL(baseURL string) Option {
	return func(cfg *gopenai.ClientConfig, _ *Client) {
		if baseURL != "" {
			cfg.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New creates an OpenAI client
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	config := gopenai.DefaultConfig(strings.TrimSpace(apiKey))
	config.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	c := &Client{model: defaultModel}
	for _, opt := range opts {
		opt(&config, c)
	}
	c.client = gopenai.NewClientWithConfig(config)
	return c, nil
}

// Name implements llm.Provider
func (c *Client) Name() string { return "openai" }

// Generate sends a single chat completion request and returns its text
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]gopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    gopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, gopenai.ChatCompletionMessage{
		Role:    gopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &llm.ProviderError{Provider: c.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{Provider: c.Name(), Message: "empty response"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// SubmitBatch always reports that batching is unavailable
func (c *Client) SubmitBatch(ctx context.Context, items []llm.BatchItem) (string, error) {
	return "", llm.ErrBatchUnsupported
}

// PollBatch is never reachable because SubmitBatch refuses every job
func (c *Client) PollBatch(ctx context.Context, jobID string) (llm.BatchStatus, error) {
	return "", llm.ErrBatchUnsupported
}

// FetchBatchResults is never reachable because SubmitBatch refuses every job
func (c *Client) FetchBatchResults(ctx context.Context, jobID string) (map[string]llm.Outcome, error) {
	return nil, llm.ErrBatchUnsupported
}
