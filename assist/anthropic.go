package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	internalstrings "github.com/amonks/orbit/internal/strings"
)

const (
	// AnthropicMessagesURL is the default Messages API endpoint.
	AnthropicMessagesURL = "https://api.anthropic.com/v1/messages"

	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-sonnet-4-20250514"

	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
)

// AnthropicOptions configures an AnthropicCompleter.
type AnthropicOptions struct {
	APIKey string
	Model  string

	// BaseURL overrides AnthropicMessagesURL. It may name either the API
	// root or the full messages endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// AnthropicCompleter calls the Anthropic Messages API. Each call is a single
// request; failures are not retried.
type AnthropicCompleter struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewAnthropicCompleter creates a completer for the Anthropic Messages API.
func NewAnthropicCompleter(opts AnthropicOptions) *AnthropicCompleter {
	model := opts.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicCompleter{
		apiKey: opts.APIKey,
		model:  model,
		url:    anthropicURL(opts.BaseURL),
		client: client,
	}
}

func anthropicURL(base string) string {
	base = internalstrings.TrimTrailingSlash(base)
	switch {
	case base == "":
		return AnthropicMessagesURL
	case strings.HasSuffix(base, "/messages"):
		return base
	default:
		return base + "/v1/messages"
	}
}

// Complete sends prompt as a single user message and returns the text of
// the first content block.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt.Text}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newUpstreamError(resp.StatusCode, respBody)
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Content) == 0 || decoded.Content[0].Text == "" {
		return "", ErrEmptyCompletion
	}
	return decoded.Content[0].Text, nil
}
