package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amonks/orbit/internal/config"
)

// Provider names accepted by NewCompleter.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Prompt is a single-turn request to a language model.
type Prompt struct {
	Text      string
	MaxTokens int
}

// Completer sends one prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt Prompt) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// NewCompleter builds the completer selected by cfg.Provider.
func NewCompleter(cfg config.Assist) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, cfg.Provider)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderAnthropic:
		return NewAnthropicCompleter(AnthropicOptions{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: &http.Client{Timeout: timeout},
		}), nil
	case ProviderOpenAI:
		return NewOpenAICompleter(OpenAIOptions{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: &http.Client{Timeout: timeout},
		})
	default:
		return nil, fmt.Errorf("unknown assist provider %q (want anthropic or openai)", cfg.Provider)
	}
}
