// Package anthropic implements the llm.Provider interface over the
// Anthropic messages and Message Batches APIs.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hochfrequenz/app-forge/internal/llm"
)

const (
	defaultModel      = "claude-sonnet-4-5-20250929"
	anthropicVersion  = "2023-06-01"
	defaultMaxTokens  = 4096
	defaultAPIBaseURL = "https://api.anthropic.com"
)

// Client talks to the Anthropic API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithModel overrides the default model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New creates an Anthropic client
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   defaultModel,
		baseURL: defaultAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements llm.Provider
func (c *Client) Name() string { return "anthropic" }

// Generate sends a single messages request and returns its text
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	payload := messageParams{
		Model:       c.model,
		System:      req.System,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
		Temperature: req.Temperature,
		Messages: []message{
			{Role: "user", Content: req.Prompt},
		},
	}

	body, err := c.post(ctx, "/v1/messages", payload)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &llm.ProviderError{Provider: c.Name(), Message: "malformed response", Err: err}
	}
	return resp.text(), nil
}

// SubmitBatch submits all items as one Message Batches job and returns
// the provider-assigned job id
func (c *Client) SubmitBatch(ctx context.Context, items []llm.BatchItem) (string, error) {
	reqs := make([]batchRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, batchRequest{
			CustomID: item.ID,
			Params: messageParams{
				Model:       c.model,
				System:      item.Request.System,
				MaxTokens:   maxTokensOrDefault(item.Request.MaxTokens),
				Temperature: item.Request.Temperature,
				Messages: []message{
					{Role: "user", Content: item.Request.Prompt},
				},
			},
		})
	}

	body, err := c.post(ctx, "/v1/messages/batches", batchCreateRequest{Requests: reqs})
	if err != nil {
		return "", err
	}

	var resp batchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &llm.ProviderError{Provider: c.Name(), Message: "malformed batch response", Err: err}
	}
	if resp.ID == "" {
		return "", &llm.ProviderError{Provider: c.Name(), Message: "batch response missing id"}
	}
	return resp.ID, nil
}

// PollBatch reads the current processing status of a batch job
func (c *Client) PollBatch(ctx context.Context, jobID string) (llm.BatchStatus, error) {
	body, err := c.get(ctx, "/v1/messages/batches/"+jobID)
	if err != nil {
		return "", err
	}

	var resp batchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &llm.ProviderError{Provider: c.Name(), Message: "malformed batch response", Err: err}
	}

	switch resp.ProcessingStatus {
	case "ended":
		return llm.BatchEnded, nil
	case "in_progress":
		return llm.BatchInProgress, nil
	case "canceling":
		return llm.BatchFailed, nil
	default:
		return llm.BatchSubmitted, nil
	}
}

// FetchBatchResults retrieves per-request outcomes of an ended batch.
// Results arrive as JSON lines keyed by custom_id.
func (c *Client) FetchBatchResults(ctx context.Context, jobID string) (map[string]llm.Outcome, error) {
	body, err := c.get(ctx, "/v1/messages/batches/"+jobID+"/results")
	if err != nil {
		return nil, err
	}

	outcomes := make(map[string]llm.Outcome)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry batchResultLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, &llm.ProviderError{Provider: c.Name(), Message: "malformed result line", Err: err}
		}
		switch entry.Result.Type {
		case "succeeded":
			outcomes[entry.CustomID] = llm.Outcome{Text: entry.Result.Message.text()}
		default:
			reason := entry.Result.Type
			if entry.Result.Error.Message != "" {
				reason = fmt.Sprintf("%s: %s", entry.Result.Type, entry.Result.Error.Message)
			}
			outcomes[entry.CustomID] = llm.Outcome{Error: reason}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &llm.ProviderError{Provider: c.Name(), Message: "reading results", Err: err}
	}
	return outcomes, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: c.Name(), Message: "reading response", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &llm.ProviderError{
			Provider: c.Name(),
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageParams struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

func (m messageResponse) text() string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

type batchCreateRequest struct {
	Requests []batchRequest `json:"requests"`
}

type batchRequest struct {
	CustomID string        `json:"custom_id"`
	Params   messageParams `json:"params"`
}

type batchResponse struct {
	ID               string `json:"id"`
	ProcessingStatus string `json:"processing_status"`
}

type batchResultLine struct {
	CustomID string `json:"custom_id"`
	Result   struct {
		Type    string          `json:"type"`
		Message messageResponse `json:"message"`
		Error   struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"result"`
}
