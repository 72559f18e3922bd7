package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIOptions configures an OpenAICompleter.
type OpenAIOptions struct {
	APIKey string
	Model  string

	// BaseURL points at any OpenAI-compatible API, such as DeepSeek or a
	// local gateway. Empty uses api.openai.com.
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAICompleter calls an OpenAI-compatible chat completion API.
type OpenAICompleter struct {
	llm llms.Model
}

// NewOpenAICompleter creates a completer for an OpenAI-compatible API.
func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	options := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithModel(model),
	}
	if opts.BaseURL != "" {
		options = append(options, openai.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		options = append(options, openai.WithHTTPClient(opts.HTTPClient))
	}

	llm, err := openai.New(options...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAICompleter{llm: llm}, nil
}

// Complete sends prompt as a single user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	reply, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt.Text, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyCompletion
	}
	return reply, nil
}
